package specification

import (
	"github.com/pkg/errors"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain/operators"
)

// SupportedFunction describes one predicate function the compiler accepts.
type SupportedFunction struct {
	// Matches decides whether a call node is this function.
	Matches               func(s.CallNode) bool
	Name                  string
	ExpectedArgumentCount int
	// VisitReceiver visits the call's receiver before its arguments.
	VisitReceiver bool
	Operator      operators.Operator
	// OperatorIfFieldWasArgument replaces Operator when the first visited
	// operand turned out to be a value and the attribute came later, i.e.
	// Includes(captured, field) means "field IN captured". Functions without
	// one reject an attribute that is not the first operand.
	OperatorIfFieldWasArgument operators.Operator
	CanMapToCondition          bool
	// IsOperand marks functions that wrap the attribute reference instead of
	// forming a predicate on their own (size).
	IsOperand  bool
	Converters *ConverterRegistry
}

func matchesName(name string, receiver bool) func(s.CallNode) bool {
	return func(n s.CallNode) bool {
		return n.Name() == name && n.HasReceiver() == receiver
	}
}

var (
	BeginsWithFunction = SupportedFunction{
		Matches:               matchesName(s.FunctionBeginsWith, true),
		Name:                  s.FunctionBeginsWith,
		ExpectedArgumentCount: 1,
		VisitReceiver:         true,
		Operator:              operators.OperatorBeginsWith,
		CanMapToCondition:     true,
	}

	ContainsFunction = SupportedFunction{
		Matches:                    matchesName(s.FunctionContains, true),
		Name:                       s.FunctionContains,
		ExpectedArgumentCount:      1,
		VisitReceiver:              true,
		Operator:                   operators.OperatorContains,
		OperatorIfFieldWasArgument: operators.OperatorIn,
		CanMapToCondition:          true,
	}

	IncludesFunction = SupportedFunction{
		Matches:                    matchesName(s.FunctionContains, false),
		Name:                       s.FunctionContains,
		ExpectedArgumentCount:      2,
		Operator:                   operators.OperatorContains,
		OperatorIfFieldWasArgument: operators.OperatorIn,
		CanMapToCondition:          true,
	}

	BetweenFunction = SupportedFunction{
		Matches:               matchesName(s.FunctionBetween, false),
		Name:                  s.FunctionBetween,
		ExpectedArgumentCount: 3,
		Operator:              operators.OperatorBetween,
		CanMapToCondition:     true,
	}

	AttributeExistsFunction = SupportedFunction{
		Matches:               matchesName(s.FunctionAttributeExists, false),
		Name:                  s.FunctionAttributeExists,
		ExpectedArgumentCount: 1,
		Operator:              operators.OperatorAttributeExists,
		CanMapToCondition:     true,
	}

	AttributeNotExistsFunction = SupportedFunction{
		Matches:               matchesName(s.FunctionAttributeNotExists, false),
		Name:                  s.FunctionAttributeNotExists,
		ExpectedArgumentCount: 1,
		Operator:              operators.OperatorAttributeNotExists,
		CanMapToCondition:     true,
	}

	SizeFunction = SupportedFunction{
		Matches:               matchesName(s.FunctionSize, false),
		Name:                  s.FunctionSize,
		ExpectedArgumentCount: 1,
		Operator:              operators.OperatorSize,
		IsOperand:             true,
	}

	CountFunction = SupportedFunction{
		Matches:               matchesName(s.FunctionCount, false),
		Name:                  s.FunctionCount,
		ExpectedArgumentCount: 1,
		Operator:              operators.OperatorSize,
		IsOperand:             true,
	}

	AttributeTypeFunction = SupportedFunction{
		Matches:               matchesName(s.FunctionAttributeType, false),
		Name:                  s.FunctionAttributeType,
		ExpectedArgumentCount: 2,
		Operator:              operators.OperatorAttributeType,
		Converters:            attributeTypeConverters(),
	}
)

func attributeTypeConverters() *ConverterRegistry {
	reg := NewConverterRegistry()
	RegisterConverter(reg, convertAttributeType)
	return reg
}

// FunctionRegistry is an ordered, read-only catalogue of functions.
type FunctionRegistry struct {
	functions []SupportedFunction
}

func NewFunctionRegistry(functions ...SupportedFunction) *FunctionRegistry {
	return &FunctionRegistry{functions: append([]SupportedFunction(nil), functions...)}
}

// DefaultFunctions is shared by every visitor that does not bring its own.
var DefaultFunctions = NewFunctionRegistry(
	BetweenFunction,
	IncludesFunction,
	ContainsFunction,
	BeginsWithFunction,
	AttributeExistsFunction,
	AttributeNotExistsFunction,
	SizeFunction,
	CountFunction,
	AttributeTypeFunction,
)

// With returns a new registry extended by functions.
func (r *FunctionRegistry) With(functions ...SupportedFunction) *FunctionRegistry {
	return NewFunctionRegistry(append(append([]SupportedFunction(nil), r.functions...), functions...)...)
}

// Resolve finds the function a call node refers to and checks its arity.
func (r *FunctionRegistry) Resolve(n s.CallNode, allowed AllowedOperations) (SupportedFunction, error) {
	for _, f := range r.functions {
		if !f.Matches(n) {
			continue
		}
		if !allowed.Allows(f.Operator) {
			return SupportedFunction{}, errors.Wrapf(ErrUnsupportedFunction, "%s is not allowed in %s", n.Name(), allowed)
		}
		if len(n.Args()) != f.ExpectedArgumentCount {
			return SupportedFunction{}, errors.Wrapf(
				ErrArgumentCountMismatch, "%s expects %d arguments, got %d",
				n.Name(), f.ExpectedArgumentCount, len(n.Args()),
			)
		}
		return f, nil
	}
	return SupportedFunction{}, errors.Wrapf(ErrUnsupportedFunction, "%s is not a supported function", n.Name())
}
