package public

import (
	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
)

// DelegatingImp wraps a Visitable node.
type DelegatingImp struct {
	delegate s.Visitable
}

func NewDelegating(delegate s.Visitable) *DelegatingImp {
	return &DelegatingImp{delegate: delegate}
}

func (d *DelegatingImp) Delegate() s.Visitable {
	return d.delegate
}

type LogicalImp struct {
	*DelegatingImp
}

func NewLogical(delegate s.Visitable) *LogicalImp {
	return &LogicalImp{DelegatingImp: NewDelegating(delegate)}
}

func (l *LogicalImp) And(other Logical) Logical {
	return NewLogical(s.And(l.Delegate(), other.Delegate()))
}

func (l *LogicalImp) Or(other Logical) Logical {
	return NewLogical(s.Or(l.Delegate(), other.Delegate()))
}

func (l *LogicalImp) Not() Logical {
	return NewLogical(s.Not(l.Delegate()))
}

// All joins conditions with AND.
func All(first Logical, rest ...Logical) Logical {
	return join(s.And, first, rest)
}

// Any joins conditions with OR.
func Any(first Logical, rest ...Logical) Logical {
	return join(s.Or, first, rest)
}

func join(fn func(s.Visitable, ...s.Visitable) s.InfixNode, first Logical, rest []Logical) Logical {
	if len(rest) == 0 {
		return first
	}
	rights := make([]s.Visitable, 0, len(rest))
	for _, r := range rest {
		rights = append(rights, r.Delegate())
	}
	return NewLogical(fn(first.Delegate(), rights...))
}

// ComparisonImp implements the scalar comparisons for any operand.
type ComparisonImp struct {
	*DelegatingImp
}

func NewComparison(delegate s.Visitable) *ComparisonImp {
	return &ComparisonImp{DelegatingImp: NewDelegating(delegate)}
}

func (c *ComparisonImp) Eq(other Comparison) Logical {
	return NewLogical(s.Equal(c.Delegate(), other.Delegate()))
}

func (c *ComparisonImp) Ne(other Comparison) Logical {
	return NewLogical(s.NotEqual(c.Delegate(), other.Delegate()))
}

func (c *ComparisonImp) Gt(other Comparison) Logical {
	return NewLogical(s.GreaterThan(c.Delegate(), other.Delegate()))
}

func (c *ComparisonImp) Lt(other Comparison) Logical {
	return NewLogical(s.LessThan(c.Delegate(), other.Delegate()))
}

func (c *ComparisonImp) Gte(other Comparison) Logical {
	return NewLogical(s.GreaterThanEqual(c.Delegate(), other.Delegate()))
}

func (c *ComparisonImp) Lte(other Comparison) Logical {
	return NewLogical(s.LessThanEqual(c.Delegate(), other.Delegate()))
}

// Between tests lower <= c <= upper.
func (c *ComparisonImp) Between(lower, upper Comparison) Logical {
	return NewLogical(s.Between(c.Delegate(), lower.Delegate(), upper.Delegate()))
}

// In tests membership in a named collection, which is sent as one
// placeholder per element.
func (c *ComparisonImp) In(name string, values any) Logical {
	return NewLogical(s.Includes(s.Captured(name, values), c.Delegate()))
}

type AttributeImp struct {
	*DelegatingImp
}

func NewAttribute(delegate s.Visitable) *AttributeImp {
	return &AttributeImp{DelegatingImp: NewDelegating(delegate)}
}

func (a *AttributeImp) Exists() Logical {
	return NewLogical(s.AttributeExists(a.Delegate()))
}

func (a *AttributeImp) NotExists() Logical {
	return NewLogical(s.AttributeNotExists(a.Delegate()))
}

func (a *AttributeImp) HasType(t s.AttributeType) Logical {
	return NewLogical(s.HasAttributeType(a.Delegate(), s.Value(t)))
}

// Field addresses a record attribute by its document path.
func Field(path string) s.FieldNode {
	return s.Path(path)
}
