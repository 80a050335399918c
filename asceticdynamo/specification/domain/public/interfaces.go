package public

import (
	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
)

// Delegating is anything that wraps a predicate tree node.
type Delegating interface {
	Delegate() s.Visitable
}

// Logical is a complete condition.
type Logical interface {
	Delegating
	And(other Logical) Logical
	Or(other Logical) Logical
	Not() Logical
}

// Comparison is an operand of the six scalar comparisons.
type Comparison interface {
	Delegating
	Eq(other Comparison) Logical
	Ne(other Comparison) Logical
	Gt(other Comparison) Logical
	Lt(other Comparison) Logical
	Gte(other Comparison) Logical
	Lte(other Comparison) Logical
}

// Attribute is a record attribute, whatever its type.
type Attribute interface {
	Delegating
	Exists() Logical
	NotExists() Logical
	HasType(t s.AttributeType) Logical
}
