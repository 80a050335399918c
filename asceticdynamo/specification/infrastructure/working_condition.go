package specification

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain/operators"
)

// WorkingCondition accumulates the comparison currently being compiled.
// It is filled while both sides of one comparison or function call are
// visited, flushed once and then discarded.
type WorkingCondition struct {
	fieldPath   string
	fieldRef    string
	fieldNames  map[string]string
	hasField    bool
	operator    operators.Operator
	hasOperator bool
	values      *valueTable
	// valueFirst is set when a value was visited before the attribute.
	valueFirst              bool
	canRepresentAsCondition bool
}

func NewWorkingCondition() *WorkingCondition {
	return &WorkingCondition{
		values:                  newValueTable(),
		canRepresentAsCondition: true,
	}
}

// FieldPath is the raw dotted wire path, the legacy condition key.
func (c *WorkingCondition) FieldPath() (string, bool) {
	return c.fieldPath, c.hasField
}

// FieldRef is the tokenized attribute reference used in the expression.
func (c *WorkingCondition) FieldRef() string {
	return c.fieldRef
}

func (c *WorkingCondition) SetField(path string) error {
	if c.hasField {
		return errors.Wrapf(ErrInvalidFieldPath, "%s compared with %s: only one side may be an attribute", c.fieldPath, path)
	}
	c.fieldPath = path
	c.fieldRef = NamePath(path)
	c.fieldNames = NameEntries(path)
	c.hasField = true
	return nil
}

// WrapField replaces the attribute reference by a function of it, e.g.
// "#tags" by "size(#tags)". The result is no longer a plain attribute, so
// the legacy API cannot express it.
func (c *WorkingCondition) WrapField(render SyntaxRenderer) {
	c.fieldRef = render(c.fieldRef, nil)
	c.canRepresentAsCondition = false
}

func (c *WorkingCondition) Operator() (operators.Operator, bool) {
	return c.operator, c.hasOperator
}

func (c *WorkingCondition) SetOperator(op operators.Operator) {
	c.operator = op
	c.hasOperator = true
}

func (c *WorkingCondition) AddValue(token string, value types.AttributeValue) {
	if !c.hasField {
		c.valueFirst = true
	}
	c.values.Set(token, value)
}

// ValueTokens returns the value tokens in visiting order.
func (c *WorkingCondition) ValueTokens() []string {
	return append([]string(nil), c.values.tokens...)
}

// ValueList returns the values in visiting order.
func (c *WorkingCondition) ValueList() []types.AttributeValue {
	list := make([]types.AttributeValue, 0, len(c.values.tokens))
	for _, token := range c.values.tokens {
		list = append(list, c.values.values[token])
	}
	return list
}

func (c *WorkingCondition) ValueFirst() bool {
	return c.valueFirst
}

func (c *WorkingCondition) CanRepresentAsCondition() bool {
	return c.canRepresentAsCondition
}

func (c *WorkingCondition) SetCanRepresentAsCondition(ok bool) {
	c.canRepresentAsCondition = ok
}

// IsEmpty reports whether nothing has been accumulated yet.
func (c *WorkingCondition) IsEmpty() bool {
	return !c.hasField && !c.hasOperator && c.values.Len() == 0
}

// ToCondition renders the legacy form, keyed by the raw dotted path.
func (c *WorkingCondition) ToCondition() (string, types.Condition, error) {
	if !c.hasField || !c.hasOperator {
		return "", types.Condition{}, errors.Wrap(ErrInvalidFieldPath, "condition has no attribute or operator")
	}
	syntax, ok := LookupOperator(c.operator)
	if !ok {
		return "", types.Condition{}, errors.Wrapf(ErrUnsupportedOperator, "%s", c.operator)
	}
	return c.fieldPath, types.Condition{
		ComparisonOperator: syntax.Legacy,
		AttributeValueList: c.ValueList(),
	}, nil
}

// Render produces the expression fragment from the given value tokens,
// which differ from ValueTokens only when an IN list was exploded.
func (c *WorkingCondition) Render(tokens []string) (string, error) {
	if !c.hasField || !c.hasOperator {
		return "", errors.Wrap(ErrInvalidFieldPath, "condition has no attribute or operator")
	}
	syntax, ok := LookupOperator(c.operator)
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedOperator, "%s", c.operator)
	}
	switch {
	case syntax.Values == 2 && len(tokens) == 1:
		// between(x, m, m) binds one token and uses it on both sides.
		tokens = []string{tokens[0], tokens[0]}
	case syntax.Values == -1 && len(tokens) == 0:
		return "", errors.Wrapf(ErrArgumentCountMismatch, "%s needs at least one value", c.operator)
	case syntax.Values >= 0 && len(tokens) != syntax.Values:
		return "", errors.Wrapf(
			ErrArgumentCountMismatch, "%s takes %d values, got %d", c.operator, syntax.Values, len(tokens),
		)
	}
	return syntax.Render(c.fieldRef, tokens), nil
}
