// Package celfilter reads predicates written in the Common Expression Language
// and turns them into specification trees, so that filters can come from
// configuration or the command line:
//
//	pk == "ORDER#1" && (size(tags) > 2 || has(meta.owner))
//	status in ["NEW", "OPEN"] && sk.startsWith(prefix)
package celfilter

import (
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
	exprv1 "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
)

var (
	ErrSyntax                = errors.New("syntax error")
	ErrUnsupportedExpression = errors.New("unsupported expression")
)

type Option func(*Parser)

// WithSubject names the variable that stands for the record, e.g. "item"
// in item.pk == "x". Without it every unbound identifier is an attribute.
func WithSubject(name string) Option {
	return func(p *Parser) {
		p.subject = name
	}
}

// WithBindings supplies named values; identifiers bound here become value
// placeholders named after the identifier.
func WithBindings(bindings map[string]any) Option {
	return func(p *Parser) {
		for name, value := range bindings {
			p.bindings[name] = value
		}
	}
}

type Parser struct {
	env      *cel.Env
	subject  string
	bindings map[string]any
}

func NewParser(opts ...Option) (*Parser, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}
	p := &Parser{
		env:      env,
		bindings: make(map[string]any),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse is a one-shot NewParser(opts...).Parse(text).
func Parse(text string, opts ...Option) (s.Visitable, error) {
	p, err := NewParser(opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse(text)
}

func (p *Parser) Parse(text string) (s.Visitable, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(ErrSyntax, "predicate is empty")
	}
	ast, issues := p.env.Parse(text)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrap(ErrSyntax, issues.Err().Error())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert AST")
	}
	return p.build(parsed.GetExpr())
}

var comparisons = map[string]func(s.Visitable, s.Visitable) s.InfixNode{
	"_==_": s.Equal,
	"_!=_": s.NotEqual,
	"_<_":  s.LessThan,
	"_<=_": s.LessThanEqual,
	"_>_":  s.GreaterThan,
	"_>=_": s.GreaterThanEqual,
}

func (p *Parser) build(expr *exprv1.Expr) (s.Visitable, error) {
	switch kind := expr.ExprKind.(type) {
	case *exprv1.Expr_ConstExpr:
		v, err := constValue(kind.ConstExpr)
		if err != nil {
			return nil, err
		}
		return s.Value(v), nil
	case *exprv1.Expr_ListExpr:
		return p.buildList(kind.ListExpr)
	case *exprv1.Expr_IdentExpr, *exprv1.Expr_SelectExpr:
		return p.buildMember(expr)
	case *exprv1.Expr_CallExpr:
		if kind.CallExpr.Function == "_[_]" {
			return p.buildMember(expr)
		}
		return p.buildCall(kind.CallExpr)
	}
	return nil, errors.Wrapf(ErrUnsupportedExpression, "%T", expr.ExprKind)
}

func (p *Parser) buildCall(call *exprv1.Expr_Call) (s.Visitable, error) {
	args, err := p.buildAll(call.Args)
	if err != nil {
		return nil, err
	}
	var target s.Visitable
	if call.Target != nil {
		if target, err = p.build(call.Target); err != nil {
			return nil, err
		}
	}
	if cmp, ok := comparisons[call.Function]; ok {
		return cmp(args[0], args[1]), nil
	}
	switch {
	case call.Function == "_&&_":
		return s.And(args[0], args[1:]...), nil
	case call.Function == "_||_":
		return s.Or(args[0], args[1:]...), nil
	case call.Function == "!_":
		return s.Not(args[0]), nil
	case call.Function == "-_":
		return negate(args[0])
	case call.Function == "@in":
		return s.Includes(args[1], args[0]), nil
	case call.Function == "startsWith" && target != nil && len(args) == 1:
		return s.BeginsWith(target, args[0]), nil
	case call.Function == "contains" && target != nil && len(args) == 1:
		return s.Contains(target, args[0]), nil
	case call.Function == "size" && target != nil && len(args) == 0:
		return s.Size(target), nil
	case target != nil:
		return nil, errors.Wrapf(ErrUnsupportedExpression, "method %s", call.Function)
	}
	return p.buildFunction(call.Function, args)
}

// buildFunction maps the DynamoDB condition functions, spelled the way the
// DynamoDB expression language spells them.
func (p *Parser) buildFunction(name string, args []s.Visitable) (s.Visitable, error) {
	switch name {
	case s.FunctionBeginsWith:
		if len(args) == 2 {
			return s.BeginsWith(args[0], args[1]), nil
		}
	case s.FunctionContains:
		if len(args) == 2 {
			return s.Contains(args[0], args[1]), nil
		}
	case s.FunctionSize:
		if len(args) == 1 {
			return s.Size(args[0]), nil
		}
	case s.FunctionAttributeType:
		if len(args) == 2 {
			return s.HasAttributeType(args[0], attributeType(args[1])), nil
		}
	default:
		// Arity of the remaining functions is checked by the compiler.
		return s.Call(name, nil, args...), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedExpression, "%s with %d arguments", name, len(args))
}

func (p *Parser) buildAll(exprs []*exprv1.Expr) ([]s.Visitable, error) {
	out := make([]s.Visitable, 0, len(exprs))
	for _, e := range exprs {
		n, err := p.build(e)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (p *Parser) buildList(list *exprv1.Expr_CreateList) (s.Visitable, error) {
	values := make([]any, 0, len(list.Elements))
	for _, e := range list.Elements {
		c := e.GetConstExpr()
		if c == nil {
			return nil, errors.Wrap(ErrUnsupportedExpression, "list elements must be literals")
		}
		v, err := constValue(c)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return s.Value(values), nil
}

// buildMember resolves identifiers and a.b.c selections. has(a.b) arrives
// here as a test-only selection.
func (p *Parser) buildMember(expr *exprv1.Expr) (s.Visitable, error) {
	testOnly := false
	if sel := expr.GetSelectExpr(); sel != nil {
		testOnly = sel.GetTestOnly()
	}
	root, path, err := memberPath(expr)
	if err != nil {
		return nil, err
	}
	n, err := p.member(root, path)
	if err != nil {
		return nil, err
	}
	if testOnly {
		return s.AttributeExists(n), nil
	}
	return n, nil
}

func (p *Parser) member(root string, path []string) (s.Visitable, error) {
	if value, ok := p.bindings[root]; ok {
		captured := s.Captured(root, value)
		if len(path) == 0 {
			return captured, nil
		}
		return s.ParsePathFrom(captured, strings.Join(path, "."))
	}
	if p.subject != "" {
		if root != p.subject {
			return nil, errors.Wrapf(ErrUnsupportedExpression, "unknown identifier %q", root)
		}
		if len(path) == 0 {
			return nil, errors.Wrapf(ErrUnsupportedExpression, "%s is the record, not an attribute", root)
		}
		return s.ParsePath(strings.Join(path, "."))
	}
	return s.ParsePath(strings.Join(append([]string{root}, path...), "."))
}

// memberPath flattens a.b[0].c into its root identifier and the segments
// after it.
func memberPath(expr *exprv1.Expr) (string, []string, error) {
	switch kind := expr.ExprKind.(type) {
	case *exprv1.Expr_IdentExpr:
		return kind.IdentExpr.GetName(), nil, nil
	case *exprv1.Expr_SelectExpr:
		root, path, err := memberPath(kind.SelectExpr.GetOperand())
		if err != nil {
			return "", nil, err
		}
		return root, append(path, kind.SelectExpr.GetField()), nil
	case *exprv1.Expr_CallExpr:
		call := kind.CallExpr
		if call.Function == "_[_]" && len(call.Args) == 2 {
			root, path, err := memberPath(call.Args[0])
			if err != nil {
				return "", nil, err
			}
			index, err := indexOf(call.Args[1])
			if err != nil {
				return "", nil, err
			}
			suffix := "[" + strconv.FormatUint(index, 10) + "]"
			if len(path) == 0 {
				return root + suffix, nil, nil
			}
			path[len(path)-1] += suffix
			return root, path, nil
		}
	}
	return "", nil, errors.Wrapf(ErrUnsupportedExpression, "%T is not an attribute path", expr.ExprKind)
}

func indexOf(expr *exprv1.Expr) (uint64, error) {
	switch k := expr.GetConstExpr().GetConstantKind().(type) {
	case *exprv1.Constant_Int64Value:
		if k.Int64Value >= 0 {
			return uint64(k.Int64Value), nil
		}
	case *exprv1.Constant_Uint64Value:
		return k.Uint64Value, nil
	}
	return 0, errors.Wrap(ErrUnsupportedExpression, "index must be a non-negative integer literal")
}

func constValue(c *exprv1.Constant) (any, error) {
	switch k := c.ConstantKind.(type) {
	case *exprv1.Constant_StringValue:
		return k.StringValue, nil
	case *exprv1.Constant_Int64Value:
		return k.Int64Value, nil
	case *exprv1.Constant_Uint64Value:
		return k.Uint64Value, nil
	case *exprv1.Constant_DoubleValue:
		return k.DoubleValue, nil
	case *exprv1.Constant_BoolValue:
		return k.BoolValue, nil
	case *exprv1.Constant_BytesValue:
		return k.BytesValue, nil
	case *exprv1.Constant_NullValue:
		return nil, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedExpression, "constant %T", c.ConstantKind)
}

func negate(n s.Visitable) (s.Visitable, error) {
	v, ok := n.(s.ValueNode)
	if !ok {
		return nil, errors.Wrap(ErrUnsupportedExpression, "only literals can be negated")
	}
	switch x := v.Value().(type) {
	case int64:
		return s.Value(-x), nil
	case float64:
		return s.Value(-x), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedExpression, "cannot negate %T", v.Value())
}

// attributeType turns the string literal "NS" into the AttributeType
// descriptor; anything else is left for the compiler to reject.
func attributeType(n s.Visitable) s.Visitable {
	if v, ok := n.(s.ValueNode); ok {
		if str, ok := v.Value().(string); ok {
			return s.Value(s.AttributeType(str))
		}
	}
	return n
}
