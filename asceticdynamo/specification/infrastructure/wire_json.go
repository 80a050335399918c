package specification

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ValueJSON renders a wire value in the DynamoDB JSON shape accepted by the
// AWS CLI, e.g. {"S": "abc"} or {"NS": ["1", "2"]}.
func ValueJSON(av types.AttributeValue) any {
	switch t := av.(type) {
	case *types.AttributeValueMemberS:
		return map[string]any{"S": t.Value}
	case *types.AttributeValueMemberN:
		return map[string]any{"N": t.Value}
	case *types.AttributeValueMemberB:
		return map[string]any{"B": t.Value}
	case *types.AttributeValueMemberBOOL:
		return map[string]any{"BOOL": t.Value}
	case *types.AttributeValueMemberNULL:
		return map[string]any{"NULL": t.Value}
	case *types.AttributeValueMemberSS:
		return map[string]any{"SS": t.Value}
	case *types.AttributeValueMemberNS:
		return map[string]any{"NS": t.Value}
	case *types.AttributeValueMemberBS:
		return map[string]any{"BS": t.Value}
	case *types.AttributeValueMemberL:
		list := make([]any, 0, len(t.Value))
		for _, e := range t.Value {
			list = append(list, ValueJSON(e))
		}
		return map[string]any{"L": list}
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(t.Value))
		for k, e := range t.Value {
			m[k] = ValueJSON(e)
		}
		return map[string]any{"M": m}
	}
	return nil
}

func valuesJSON(values map[string]types.AttributeValue) map[string]any {
	out := make(map[string]any, len(values))
	for token, av := range values {
		out[token] = ValueJSON(av)
	}
	return out
}

func (e Expression) MarshalJSON() ([]byte, error) {
	names := e.Names
	if names == nil {
		names = map[string]string{}
	}
	return marshal(struct {
		Statement string            `json:"Statement"`
		Names     map[string]string `json:"Names"`
		Values    map[string]any    `json:"Values"`
	}{e.Statement, names, valuesJSON(e.Values)})
}

// ConditionsJSON renders legacy conditions the way ScanFilter is written
// for the AWS CLI.
func ConditionsJSON(conditions map[string]types.Condition) map[string]any {
	out := make(map[string]any, len(conditions))
	for key, c := range conditions {
		list := make([]any, 0, len(c.AttributeValueList))
		for _, av := range c.AttributeValueList {
			list = append(list, ValueJSON(av))
		}
		out[key] = map[string]any{
			"ComparisonOperator": string(c.ComparisonOperator),
			"AttributeValueList": list,
		}
	}
	return out
}

func (r Result) MarshalJSON() ([]byte, error) {
	return marshal(struct {
		Conditions map[string]any `json:"Conditions"`
		Expression Expression     `json:"Expression"`
	}{ConditionsJSON(r.Conditions), r.Expression})
}

// WriteJSON writes v indented, without HTML escaping, so comparison
// operators stay readable.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
