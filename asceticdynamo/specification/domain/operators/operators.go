package operators

type Operator string

const (
	// Comparison

	OperatorEq  Operator = "="
	OperatorNe  Operator = "<>"
	OperatorGt  Operator = ">"
	OperatorLt  Operator = "<"
	OperatorGte Operator = ">="
	OperatorLte Operator = "<="

	// Logical operators

	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
	OperatorNot Operator = "NOT"

	// Functions

	OperatorBeginsWith         Operator = "begins_with"
	OperatorContains           Operator = "contains"
	OperatorBetween            Operator = "BETWEEN"
	OperatorIn                 Operator = "IN"
	OperatorAttributeExists    Operator = "attribute_exists"
	OperatorAttributeNotExists Operator = "attribute_not_exists"
	OperatorSize               Operator = "size"
	OperatorAttributeType      Operator = "attribute_type"
)

// IsComparison reports whether op is one of the six scalar comparison operators.
func (op Operator) IsComparison() bool {
	switch op {
	case OperatorEq, OperatorNe, OperatorGt, OperatorLt, OperatorGte, OperatorLte:
		return true
	}
	return false
}

// IsJoin reports whether op combines two predicates.
func (op Operator) IsJoin() bool {
	return op == OperatorAnd || op == OperatorOr
}

// Mirror returns the operator that keeps the meaning of a comparison
// when its operands are swapped.
func (op Operator) Mirror() Operator {
	switch op {
	case OperatorGt:
		return OperatorLt
	case OperatorLt:
		return OperatorGt
	case OperatorGte:
		return OperatorLte
	case OperatorLte:
		return OperatorGte
	}
	return op
}
