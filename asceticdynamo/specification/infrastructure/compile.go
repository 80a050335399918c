package specification

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain/operators"
)

// Expression is the condition expression form: a statement with "#name"
// and ":value" tokens plus the two substitution tables.
type Expression struct {
	Statement string
	Names     map[string]string
	Values    map[string]types.AttributeValue
}

// IsEmpty reports whether no condition was compiled.
func (e Expression) IsEmpty() bool {
	return e.Statement == ""
}

// Result carries both forms of one compiled predicate.
type Result struct {
	Conditions map[string]types.Condition
	Expression Expression
}

// BuildConditions compiles exp into legacy conditions, keyed by attribute
// path. Conditions without a legacy form (size, attribute_type, anything
// under NOT) are left out; an attribute constrained twice is an error.
func BuildConditions(exp s.Visitable, opts ...DynamodbVisitorOption) (map[string]types.Condition, error) {
	v, err := accept(exp, opts...)
	if err != nil {
		return nil, err
	}
	return v.Conditions()
}

// BuildExpression compiles exp into a condition expression.
func BuildExpression(exp s.Visitable, opts ...DynamodbVisitorOption) (Expression, error) {
	v, err := accept(exp, opts...)
	if err != nil {
		return Expression{}, err
	}
	return v.Expression()
}

// Compile produces both forms from a single traversal.
func Compile(exp s.Visitable, opts ...DynamodbVisitorOption) (Result, error) {
	v, err := accept(exp, opts...)
	if err != nil {
		return Result{}, err
	}
	return v.Result()
}

func accept(exp s.Visitable, opts ...DynamodbVisitorOption) (*DynamodbVisitor, error) {
	v := NewDynamodbVisitor(opts...)
	if err := exp.Accept(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *DynamodbVisitor) complete() error {
	if !v.working.IsEmpty() {
		return errors.Wrap(ErrUnsupportedOperator, "predicate does not compile to a condition")
	}
	return nil
}

func (v *DynamodbVisitor) Conditions() (map[string]types.Condition, error) {
	if err := v.complete(); err != nil {
		return nil, err
	}
	if len(v.duplicates) > 0 {
		return nil, errors.Wrapf(ErrDuplicateCondition, "%s", strings.Join(v.duplicates, ", "))
	}
	conditions := make(map[string]types.Condition, len(v.conditions))
	for key, condition := range v.conditions {
		conditions[key] = condition
	}
	return conditions, nil
}

// LegacyComplete reports whether every compiled condition has a legacy
// form. A filter missing some of them would match more items.
func (v *DynamodbVisitor) LegacyComplete() bool {
	return v.omitted == 0
}

// ConditionalOperator tells how the legacy conditions combine. The legacy
// API applies one operator to the whole map, so a predicate mixing AND and
// OR has no legacy form.
func (v *DynamodbVisitor) ConditionalOperator() (types.ConditionalOperator, error) {
	and, or := v.joins[operators.OperatorAnd], v.joins[operators.OperatorOr]
	switch {
	case and && or:
		return "", errors.Wrap(ErrUnsupportedOperator, "legacy conditions cannot mix AND and OR")
	case or:
		return types.ConditionalOperatorOr, nil
	}
	return types.ConditionalOperatorAnd, nil
}

func (v *DynamodbVisitor) Expression() (Expression, error) {
	if err := v.complete(); err != nil {
		return Expression{}, err
	}
	names := make(map[string]string, len(v.names))
	for token, name := range v.names {
		names[token] = name
	}
	return Expression{
		Statement: stripOuterParens(v.statement),
		Names:     names,
		Values:    v.values.Map(),
	}, nil
}

func (v *DynamodbVisitor) Result() (Result, error) {
	conditions, err := v.Conditions()
	if err != nil {
		return Result{}, err
	}
	expression, err := v.Expression()
	if err != nil {
		return Result{}, err
	}
	return Result{Conditions: conditions, Expression: expression}, nil
}

// stripOuterParens removes one pair of parentheses when it encloses the
// whole statement.
func stripOuterParens(statement string) string {
	if len(statement) < 2 || statement[0] != '(' || statement[len(statement)-1] != ')' {
		return statement
	}
	depth := 0
	for i, c := range statement {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(statement)-1 {
				return statement
			}
		}
	}
	return statement[1 : len(statement)-1]
}
