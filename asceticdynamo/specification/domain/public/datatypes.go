package public

import (
	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
)

// Boolean is a BOOL attribute or value.
type Boolean struct {
	*ComparisonImp
	*AttributeImp
}

func NewBoolean(delegate s.Visitable) *Boolean {
	return &Boolean{
		ComparisonImp: NewComparison(delegate),
		AttributeImp:  NewAttribute(delegate),
	}
}

func (b *Boolean) Delegate() s.Visitable {
	return b.ComparisonImp.Delegate()
}

func (b *Boolean) IsTrue() Logical {
	return b.Eq(MakeBooleanValue(true))
}

func (b *Boolean) IsFalse() Logical {
	return b.Eq(MakeBooleanValue(false))
}

func MakeBooleanField(path string) *Boolean {
	return NewBoolean(Field(path))
}

func MakeBooleanValue(value bool) *Boolean {
	return NewBoolean(s.Value(value))
}

// Number is an N attribute or value.
type Number struct {
	*ComparisonImp
	*AttributeImp
}

func NewNumber(delegate s.Visitable) *Number {
	return &Number{
		ComparisonImp: NewComparison(delegate),
		AttributeImp:  NewAttribute(delegate),
	}
}

func (n *Number) Delegate() s.Visitable {
	return n.ComparisonImp.Delegate()
}

func MakeNumberField(path string) *Number {
	return NewNumber(Field(path))
}

func MakeNumberValue(value any) *Number {
	return NewNumber(s.Value(value))
}

// MakeNumberParam is a named value; the name becomes its placeholder.
func MakeNumberParam(name string, value any) *Number {
	return NewNumber(s.Captured(name, value))
}

// String is an S attribute or value.
type String struct {
	*ComparisonImp
	*AttributeImp
}

func NewString(delegate s.Visitable) *String {
	return &String{
		ComparisonImp: NewComparison(delegate),
		AttributeImp:  NewAttribute(delegate),
	}
}

func (v *String) Delegate() s.Visitable {
	return v.ComparisonImp.Delegate()
}

func (v *String) BeginsWith(prefix *String) Logical {
	return NewLogical(s.BeginsWith(v.Delegate(), prefix.Delegate()))
}

func (v *String) Contains(substring *String) Logical {
	return NewLogical(s.Contains(v.Delegate(), substring.Delegate()))
}

// Size is the length of the string in bytes.
func (v *String) Size() *Number {
	return NewNumber(s.Size(v.Delegate()))
}

func MakeStringField(path string) *String {
	return NewString(Field(path))
}

func MakeStringValue(value string) *String {
	return NewString(s.Value(value))
}

func MakeStringParam(name, value string) *String {
	return NewString(s.Captured(name, value))
}

// Collection is a set, list or map attribute.
type Collection struct {
	*AttributeImp
}

func NewCollection(delegate s.Visitable) *Collection {
	return &Collection{AttributeImp: NewAttribute(delegate)}
}

func (c *Collection) Contains(element Comparison) Logical {
	return NewLogical(s.Contains(c.Delegate(), element.Delegate()))
}

func (c *Collection) Size() *Number {
	return NewNumber(s.Size(c.Delegate()))
}

func MakeCollectionField(path string) *Collection {
	return NewCollection(Field(path))
}
