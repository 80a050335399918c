package specification

import "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain/operators"

type Visitable interface {
	Accept(Visitor) error
}

type Visitor interface {
	VisitGlobalScope(GlobalScopeNode) error
	VisitObject(ObjectNode) error
	VisitField(FieldNode) error
	VisitValue(ValueNode) error
	VisitCaptured(CapturedNode) error
	VisitPrefix(PrefixNode) error
	VisitInfix(InfixNode) error
	VisitCall(CallNode) error
}

func Value(value any) ValueNode {
	return ValueNode{
		value: value,
	}
}

// ValueNode is a literal written directly in the predicate.
type ValueNode struct {
	value any
}

func (n ValueNode) Value() any {
	return n.value
}

func (n ValueNode) Accept(v Visitor) error {
	return v.VisitValue(n)
}

// Captured binds a named variable from the surrounding scope.
// The name becomes the preferred value placeholder.
func Captured(name string, value any) CapturedNode {
	return CapturedNode{
		name:  name,
		value: value,
	}
}

// CapturedNode is a variable captured from the caller's scope. It is
// also a root for member chains, so Field(Captured("req", req), "Name")
// reads req.Name instead of addressing a record attribute.
type CapturedNode struct {
	name  string
	value any
}

func (n CapturedNode) Value() any {
	return n.value
}

func (n CapturedNode) Parent() EmptiableObject {
	return n
}

func (n CapturedNode) Name() string {
	return n.name
}

func (n CapturedNode) IsRoot() bool {
	return true
}

func (n CapturedNode) Accept(v Visitor) error {
	return v.VisitCaptured(n)
}

func Not(operand Visitable) PrefixNode {
	return PrefixNode{
		operator: operators.OperatorNot,
		operand:  operand,
	}
}

type PrefixNode struct {
	operator operators.Operator
	operand  Visitable
}

func (n PrefixNode) Operand() Visitable {
	return n.operand
}
func (n PrefixNode) Operator() operators.Operator {
	return n.operator
}
func (n PrefixNode) Accept(v Visitor) error {
	return v.VisitPrefix(n)
}

func Equal(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorEq, right)
}

func NotEqual(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorNe, right)
}

func GreaterThan(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorGt, right)
}

func GreaterThanEqual(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorGte, right)
}

func LessThan(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorLt, right)
}

func LessThanEqual(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorLte, right)
}

func And(left Visitable, rights ...Visitable) InfixNode {
	left, right := foldRights(And, left, rights...)
	return NewInfixNode(left, operators.OperatorAnd, right)
}

func Or(left Visitable, rights ...Visitable) InfixNode {
	left, right := foldRights(Or, left, rights...)
	return NewInfixNode(left, operators.OperatorOr, right)
}

func foldRights(
	aCallable func(Visitable, ...Visitable) InfixNode,
	aLeft Visitable,
	aRights ...Visitable,
) (left, right Visitable) {
	for len(aRights) > 1 {
		aLeft = aCallable(aLeft, aRights[0])
		aRights = aRights[1:]
	}
	return aLeft, aRights[0]
}

func NewInfixNode(left Visitable, operator operators.Operator, right Visitable) InfixNode {
	return InfixNode{
		left:     left,
		operator: operator,
		right:    right,
	}
}

// InfixNode is either a comparison or an AND/OR join, depending on its operator.
type InfixNode struct {
	left     Visitable
	operator operators.Operator
	right    Visitable
}

func (n InfixNode) Left() Visitable {
	return n.left
}

func (n InfixNode) Operator() operators.Operator {
	return n.operator
}

func (n InfixNode) Right() Visitable {
	return n.right
}

func (n InfixNode) Accept(v Visitor) error {
	return v.VisitInfix(n)
}

// Call builds a function call node. Receiver may be nil for free functions.
func Call(name string, receiver Visitable, args ...Visitable) CallNode {
	return CallNode{
		name:     name,
		receiver: receiver,
		args:     args,
	}
}

type CallNode struct {
	name     string
	receiver Visitable
	args     []Visitable
}

func (n CallNode) Name() string {
	return n.name
}

func (n CallNode) Receiver() Visitable {
	return n.receiver
}

func (n CallNode) HasReceiver() bool {
	return n.receiver != nil
}

func (n CallNode) Args() []Visitable {
	return n.args
}

func (n CallNode) Accept(v Visitor) error {
	return v.VisitCall(n)
}

type EmptiableObject interface {
	Visitable
	Parent() EmptiableObject
	Name() string
	IsRoot() bool
}

// GlobalScope is the predicate's subject: the record being filtered.
func GlobalScope() GlobalScopeNode {
	return GlobalScopeNode{}
}

type GlobalScopeNode struct{}

func (n GlobalScopeNode) Parent() EmptiableObject {
	return n
}

func (n GlobalScopeNode) Name() string {
	return "Empty"
}

func (n GlobalScopeNode) IsRoot() bool {
	return true
}
func (n GlobalScopeNode) Accept(v Visitor) error {
	return v.VisitGlobalScope(n)
}

func Object(parent EmptiableObject, name string) ObjectNode {
	return ObjectNode{
		parent: parent,
		name:   name,
	}
}

type ObjectNode struct {
	parent EmptiableObject
	name   string
}

func (n ObjectNode) Parent() EmptiableObject {
	return n.parent
}

func (n ObjectNode) Name() string {
	return n.name
}

func (n ObjectNode) IsRoot() bool {
	return false
}

func (n ObjectNode) Accept(v Visitor) error {
	return v.VisitObject(n)
}

func Field(object EmptiableObject, name string) FieldNode {
	return FieldNode{
		object: object,
		name:   name,
	}
}

type FieldNode struct {
	object EmptiableObject
	name   string
}

func (n FieldNode) Name() string {
	return n.name
}

func (n FieldNode) Object() EmptiableObject {
	return n.object
}

func (n FieldNode) Accept(v Visitor) error {
	return v.VisitField(n)
}
