package specification

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type sampleInner struct {
	Id string `dynamodbav:"pk"`
}

type sampleEntity struct {
	Id          string       `dynamodbav:"pk"`
	Name        string       `dynamodbav:"sk"`
	Age         int          `dynamodbav:"age"`
	StringArray []string     `dynamodbav:"stringArray"`
	IntArray    []int        `dynamodbav:"intArray"`
	InnerObject *sampleInner `dynamodbav:"innerObject,omitempty"`
	Ignored     string       `dynamodbav:"-"`
}

const (
	id   = "SAMPLEENTITY#myId"
	name = "SAMPLEENTITY#myName"
)

func sampleSchema(t *testing.T) *AttributeSchema {
	t.Helper()
	schema, err := SchemaOf(sampleEntity{})
	require.NoError(t, err)
	return schema
}

func str(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func num(v string) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: v}
}

func condition(op types.ComparisonOperator, values ...types.AttributeValue) types.Condition {
	if values == nil {
		values = []types.AttributeValue{}
	}
	return types.Condition{ComparisonOperator: op, AttributeValueList: values}
}
