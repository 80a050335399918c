package specification

// Names of the predicate functions understood by the DynamoDB compiler.
const (
	FunctionBeginsWith         = "begins_with"
	FunctionContains           = "contains"
	FunctionBetween            = "between"
	FunctionAttributeExists    = "attribute_exists"
	FunctionAttributeNotExists = "attribute_not_exists"
	FunctionSize               = "size"
	FunctionCount              = "count"
	FunctionAttributeType      = "attribute_type"
)

// BeginsWith tests that a string attribute starts with prefix.
func BeginsWith(field, prefix Visitable) CallNode {
	return Call(FunctionBeginsWith, field, prefix)
}

// Contains tests that a string attribute contains a substring, or that a
// set or list attribute contains an element. With a collection value as the
// receiver and an attribute as the item it compiles to IN.
func Contains(receiver, item Visitable) CallNode {
	return Call(FunctionContains, receiver, item)
}

// Includes is the free-function form of membership. When the collection is
// a captured set or list and the item is an attribute it compiles to IN,
// otherwise it behaves as Contains(collection, item).
//
//	Includes(Captured("ids", ids), Field(GlobalScope(), "Id"))   // #Id IN (:ids_0, :ids_1)
//	Includes(Field(GlobalScope(), "Tags"), Value("x"))           // contains(#Tags, :pString)
func Includes(collection, item Visitable) CallNode {
	return Call(FunctionContains, nil, collection, item)
}

// Between tests lower <= field <= upper.
func Between(field, lower, upper Visitable) CallNode {
	return Call(FunctionBetween, nil, field, lower, upper)
}

func AttributeExists(field Visitable) CallNode {
	return Call(FunctionAttributeExists, nil, field)
}

func AttributeNotExists(field Visitable) CallNode {
	return Call(FunctionAttributeNotExists, nil, field)
}

// Size is an operand, not a predicate: compare it, e.g.
// GreaterThan(Size(field), Value(3)).
func Size(field Visitable) CallNode {
	return Call(FunctionSize, nil, field)
}

// Count is Size spelled the way collection code usually spells it.
func Count(collection Visitable) CallNode {
	return Call(FunctionCount, nil, collection)
}

// HasAttributeType tests the stored type of an attribute; attributeType is
// normally Value(S), Value(NS), ...
func HasAttributeType(field, attributeType Visitable) CallNode {
	return Call(FunctionAttributeType, nil, field, attributeType)
}

// AttributeType is a DynamoDB data type descriptor.
type AttributeType string

const (
	S    AttributeType = "S"
	SS   AttributeType = "SS"
	N    AttributeType = "N"
	NS   AttributeType = "NS"
	B    AttributeType = "B"
	BS   AttributeType = "BS"
	BOOL AttributeType = "BOOL"
	NULL AttributeType = "NULL"
	L    AttributeType = "L"
	M    AttributeType = "M"
)

func (t AttributeType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the ten DynamoDB type descriptors.
func (t AttributeType) IsValid() bool {
	switch t {
	case S, SS, N, NS, B, BS, BOOL, NULL, L, M:
		return true
	}
	return false
}
