package specification

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain/operators"
)

// Comparison codes the legacy Condition API has no constant for. They only
// ever appear on conditions that cannot be sent as legacy conditions.
const (
	ComparisonOperatorSize          types.ComparisonOperator = "SIZE"
	ComparisonOperatorAttributeType types.ComparisonOperator = "ATTRIBUTE_TYPE"
)

// SyntaxRenderer renders one condition fragment from a tokenized attribute
// reference and the ordered value tokens.
type SyntaxRenderer func(name string, values []string) string

// OperatorSyntax binds an abstract operator to its two wire forms.
type OperatorSyntax struct {
	Legacy types.ComparisonOperator
	Render SyntaxRenderer
	// Values is the number of value tokens the syntax takes; -1 means one or more.
	Values int
}

func infix(symbol string) SyntaxRenderer {
	return func(name string, values []string) string {
		return fmt.Sprintf("%s %s %s", name, symbol, values[0])
	}
}

func function(fn string) SyntaxRenderer {
	return func(name string, values []string) string {
		args := append([]string{name}, values...)
		return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", "))
	}
}

var operatorTable = map[operators.Operator]OperatorSyntax{
	operators.OperatorEq:  {Legacy: types.ComparisonOperatorEq, Render: infix("="), Values: 1},
	operators.OperatorNe:  {Legacy: types.ComparisonOperatorNe, Render: infix("<>"), Values: 1},
	operators.OperatorLte: {Legacy: types.ComparisonOperatorLe, Render: infix("<="), Values: 1},
	operators.OperatorLt:  {Legacy: types.ComparisonOperatorLt, Render: infix("<"), Values: 1},
	operators.OperatorGt:  {Legacy: types.ComparisonOperatorGt, Render: infix(">"), Values: 1},
	operators.OperatorGte: {Legacy: types.ComparisonOperatorGe, Render: infix(">="), Values: 1},

	operators.OperatorBeginsWith: {Legacy: types.ComparisonOperatorBeginsWith, Render: function("begins_with"), Values: 1},
	operators.OperatorContains:   {Legacy: types.ComparisonOperatorContains, Render: function("contains"), Values: 1},
	operators.OperatorBetween: {
		Legacy: types.ComparisonOperatorBetween,
		Render: func(name string, values []string) string {
			return fmt.Sprintf("%s BETWEEN %s AND %s", name, values[0], values[1])
		},
		Values: 2,
	},
	operators.OperatorIn: {
		Legacy: types.ComparisonOperatorIn,
		Render: func(name string, values []string) string {
			return fmt.Sprintf("%s IN (%s)", name, strings.Join(values, ", "))
		},
		Values: -1,
	},
	operators.OperatorAttributeExists:    {Legacy: types.ComparisonOperatorNotNull, Render: function("attribute_exists"), Values: 0},
	operators.OperatorAttributeNotExists: {Legacy: types.ComparisonOperatorNull, Render: function("attribute_not_exists"), Values: 0},
	operators.OperatorSize:               {Legacy: ComparisonOperatorSize, Render: function("size"), Values: 0},
	operators.OperatorAttributeType:      {Legacy: ComparisonOperatorAttributeType, Render: function("attribute_type"), Values: 1},
}

// LookupOperator returns the wire syntax of op.
func LookupOperator(op operators.Operator) (OperatorSyntax, bool) {
	syntax, ok := operatorTable[op]
	return syntax, ok
}

// AllowedOperations restricts what a visitor accepts. Key conditions only
// support a subset of the condition language.
type AllowedOperations int

const (
	AllOperations AllowedOperations = iota
	KeyConditionsOnly
)

var keyConditionOperators = map[operators.Operator]bool{
	operators.OperatorEq:         true,
	operators.OperatorLte:        true,
	operators.OperatorLt:         true,
	operators.OperatorGt:         true,
	operators.OperatorGte:        true,
	operators.OperatorBetween:    true,
	operators.OperatorBeginsWith: true,
	operators.OperatorAnd:        true,
}

// Allows reports whether op may appear under this operation set.
func (a AllowedOperations) Allows(op operators.Operator) bool {
	if a == KeyConditionsOnly {
		return keyConditionOperators[op]
	}
	if op.IsJoin() || op == operators.OperatorNot {
		return true
	}
	_, ok := operatorTable[op]
	return ok
}

func (a AllowedOperations) String() string {
	if a == KeyConditionsOnly {
		return "KEY_CONDITIONS_ONLY"
	}
	return "ALL"
}
