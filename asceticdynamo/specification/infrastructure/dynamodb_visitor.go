package specification

import (
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain/operators"
)

type DynamodbVisitorOption func(*DynamodbVisitor)

// WithSchema maps record field names to wire attribute names.
func WithSchema(schema *AttributeSchema) DynamodbVisitorOption {
	return func(v *DynamodbVisitor) {
		v.schema = schema
	}
}

func WithConverters(converters *ConverterRegistry) DynamodbVisitorOption {
	return func(v *DynamodbVisitor) {
		v.converters = converters
	}
}

func WithFunctions(functions *FunctionRegistry) DynamodbVisitorOption {
	return func(v *DynamodbVisitor) {
		v.functions = functions
	}
}

// WithAllowedOperations restricts the accepted operators, e.g. to the key
// condition subset.
func WithAllowedOperations(allowed AllowedOperations) DynamodbVisitorOption {
	return func(v *DynamodbVisitor) {
		v.allowed = allowed
	}
}

// WithSubstitutions seeds the substitution tables, so that several
// expressions of one request (key condition, filter, projection) share
// them without token clashes.
func WithSubstitutions(names map[string]string, values map[string]types.AttributeValue) DynamodbVisitorOption {
	return func(v *DynamodbVisitor) {
		for token, name := range names {
			v.names[token] = name
		}
		tokens := make([]string, 0, len(values))
		for token := range values {
			tokens = append(tokens, token)
		}
		sort.Strings(tokens)
		for _, token := range tokens {
			v.values.Set(token, values[token])
		}
	}
}

func WithLogger(logger *slog.Logger) DynamodbVisitorOption {
	return func(v *DynamodbVisitor) {
		v.logger = logger
	}
}

func NewDynamodbVisitor(opts ...DynamodbVisitorOption) *DynamodbVisitor {
	v := &DynamodbVisitor{
		names:      make(map[string]string),
		values:     newValueTable(),
		conditions: make(map[string]types.Condition),
		joins:      make(map[operators.Operator]bool),
		converters: NewDefaultConverterRegistry(),
		functions:  DefaultFunctions,
		allowed:    AllOperations,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		working:    NewWorkingCondition(),
	}
	for i := range opts {
		opts[i](v)
	}
	return v
}

// DynamodbVisitor compiles a predicate tree into both DynamoDB condition
// forms in a single traversal. A visitor compiles one predicate.
type DynamodbVisitor struct {
	statement  string
	names      map[string]string
	values     *valueTable
	conditions map[string]types.Condition
	duplicates []string
	joins      map[operators.Operator]bool
	// omitted counts conditions with no legacy form.
	omitted int

	schema     *AttributeSchema
	converters *ConverterRegistry
	functions  *FunctionRegistry
	allowed    AllowedOperations
	logger     *slog.Logger

	working *WorkingCondition
	// callConverters are the converters of the function being visited.
	callConverters *ConverterRegistry
	negated        int
	operandDepth   int
}

func (v *DynamodbVisitor) VisitGlobalScope(_ s.GlobalScopeNode) error {
	return errors.Wrap(ErrInvalidFieldPath, "the record itself is not an attribute")
}

func (v *DynamodbVisitor) VisitObject(n s.ObjectNode) error {
	return errors.Wrapf(ErrInvalidFieldPath, "%s is not a terminal attribute", n.Name())
}

func (v *DynamodbVisitor) VisitField(n s.FieldNode) error {
	path := s.ExtractFieldPath(n)
	for _, segment := range path {
		if err := s.ValidateSegment(segment); err != nil {
			return errors.Wrapf(ErrInvalidFieldPath, "%q: %v", strings.Join(path, "."), err)
		}
	}
	if captured, ok := s.RootOf(n).(s.CapturedNode); ok {
		value, err := readMember(captured.Value(), path)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", captured.Name(), strings.Join(path, "."))
		}
		name, _ := splitIndex(path[len(path)-1])
		return v.addValue(name, value)
	}
	return v.working.SetField(strings.Join(v.schema.Resolve(path), "."))
}

func (v *DynamodbVisitor) VisitValue(n s.ValueNode) error {
	return v.addValue(SyntheticName(n.Value()), n.Value())
}

func (v *DynamodbVisitor) VisitCaptured(n s.CapturedNode) error {
	return v.addValue(n.Name(), n.Value())
}

func (v *DynamodbVisitor) addValue(candidate string, value any) error {
	var (
		av  types.AttributeValue
		err error
	)
	if c, ok := v.callConverters.Lookup(reflect.TypeOf(value)); ok {
		av, err = c(value)
	} else {
		av, err = v.converters.Convert(value)
	}
	if err != nil {
		return err
	}
	token := ValueToken(candidate, av, pendingBindings{pending: v.working.values, flushed: v.values})
	v.working.AddValue(token, av)
	return nil
}

func (v *DynamodbVisitor) VisitPrefix(n s.PrefixNode) error {
	if n.Operator() != operators.OperatorNot {
		return errors.Wrapf(ErrUnsupportedOperator, "prefix %s", n.Operator())
	}
	if !v.allowed.Allows(n.Operator()) {
		return errors.Wrapf(ErrUnsupportedOperator, "%s is not allowed in %s", n.Operator(), v.allowed)
	}
	if v.operandDepth > 0 {
		return errors.Wrapf(ErrUnsupportedOperator, "%s used as an operand", n.Operator())
	}
	v.statement += "NOT "
	v.negated++
	defer func() { v.negated-- }()
	return n.Operand().Accept(v)
}

func (v *DynamodbVisitor) VisitInfix(n s.InfixNode) error {
	op := n.Operator()
	if !v.allowed.Allows(op) {
		return errors.Wrapf(ErrUnsupportedOperator, "%s is not allowed in %s", op, v.allowed)
	}
	if op.IsJoin() {
		return v.visitJoin(n)
	}
	if !op.IsComparison() {
		return errors.Wrapf(ErrUnsupportedOperator, "infix %s", op)
	}
	if v.operandDepth > 0 {
		return errors.Wrapf(ErrUnsupportedOperator, "%s used as an operand", op)
	}
	v.operandDepth++
	err := n.Left().Accept(v)
	if err == nil {
		err = n.Right().Accept(v)
	}
	v.operandDepth--
	if err != nil {
		return err
	}
	if v.working.ValueFirst() {
		op = op.Mirror()
	}
	v.working.SetOperator(op)
	return v.flush()
}

func (v *DynamodbVisitor) visitJoin(n s.InfixNode) error {
	if v.operandDepth > 0 {
		return errors.Wrapf(ErrUnsupportedOperator, "%s used as an operand", n.Operator())
	}
	v.joins[n.Operator()] = true
	v.statement += "("
	if err := v.visitPredicate(n.Left()); err != nil {
		return err
	}
	v.statement += " " + string(n.Operator()) + " "
	if err := v.visitPredicate(n.Right()); err != nil {
		return err
	}
	v.statement += ")"
	return nil
}

// visitPredicate visits one side of a join, which must compile to a
// complete condition.
func (v *DynamodbVisitor) visitPredicate(n s.Visitable) error {
	if err := n.Accept(v); err != nil {
		return err
	}
	if !v.working.IsEmpty() {
		return errors.Wrap(ErrUnsupportedOperator, "operand is not a condition")
	}
	return nil
}

func (v *DynamodbVisitor) VisitCall(n s.CallNode) error {
	f, err := v.functions.Resolve(n, v.allowed)
	if err != nil {
		return err
	}
	outerConverters := v.callConverters
	v.callConverters = f.Converters
	defer func() { v.callConverters = outerConverters }()

	operands := n.Args()
	if f.VisitReceiver {
		operands = append([]s.Visitable{n.Receiver()}, operands...)
	}
	hadField := v.working.hasField
	firstWasField := false
	v.operandDepth++
	for i, operand := range operands {
		if err := operand.Accept(v); err != nil {
			v.operandDepth--
			return err
		}
		if i == 0 {
			firstWasField = !hadField && v.working.hasField
		}
	}
	v.operandDepth--

	if !v.working.hasField {
		return errors.Wrapf(ErrInvalidFieldPath, "%s has no attribute operand", f.Name)
	}
	if f.IsOperand {
		syntax, _ := LookupOperator(f.Operator)
		v.working.WrapField(syntax.Render)
		return nil
	}
	if v.operandDepth > 0 {
		return errors.Wrapf(ErrUnsupportedOperator, "%s used as an operand", f.Name)
	}

	op := f.Operator
	if !firstWasField {
		if f.OperatorIfFieldWasArgument == "" {
			return errors.Wrapf(ErrInvalidFieldPath, "%s needs the attribute as its first operand", f.Name)
		}
		op = f.OperatorIfFieldWasArgument
		if !v.allowed.Allows(op) {
			return errors.Wrapf(ErrUnsupportedOperator, "%s is not allowed in %s", op, v.allowed)
		}
		if op == operators.OperatorIn {
			for _, value := range v.working.ValueList() {
				if setElements(value) == nil {
					return errors.Wrapf(ErrInvalidFieldPath, "%s of a scalar with the attribute as argument", f.Name)
				}
			}
		}
	}
	v.working.SetOperator(op)
	v.working.SetCanRepresentAsCondition(v.working.CanRepresentAsCondition() && f.CanMapToCondition)
	return v.flush()
}

// flush moves the working condition into the outputs and starts a new one.
func (v *DynamodbVisitor) flush() error {
	wc := v.working
	op, _ := wc.Operator()
	tokens := wc.ValueTokens()
	if op == operators.OperatorIn {
		var err error
		if tokens, err = v.explode(wc); err != nil {
			return err
		}
	} else {
		for i, token := range tokens {
			v.values.Set(token, wc.ValueList()[i])
		}
	}
	fragment, err := wc.Render(tokens)
	if err != nil {
		return err
	}
	v.statement += fragment
	for token, name := range wc.fieldNames {
		v.names[token] = name
	}

	if wc.CanRepresentAsCondition() && v.negated == 0 {
		key, condition, err := wc.ToCondition()
		if err != nil {
			return err
		}
		if _, ok := v.conditions[key]; ok {
			v.duplicates = append(v.duplicates, key)
		} else {
			v.conditions[key] = condition
		}
	} else {
		v.omitted++
	}
	v.logger.Debug("condition compiled", "fragment", fragment, "attribute", wc.fieldPath)
	v.working = NewWorkingCondition()
	return nil
}

// explode binds each element of the IN collection to its own token,
// ":ids" becoming ":ids_0", ":ids_1", ...
func (v *DynamodbVisitor) explode(wc *WorkingCondition) ([]string, error) {
	var tokens []string
	values := wc.ValueList()
	for i, token := range wc.ValueTokens() {
		elements := setElements(values[i])
		if elements == nil {
			v.values.Set(token, values[i])
			tokens = append(tokens, token)
			continue
		}
		if len(elements) == 0 {
			return nil, errors.Wrapf(ErrUnconvertibleValue, "%s is an empty collection", token)
		}
		base := strings.TrimPrefix(token, ValueSigil)
		for j, element := range elements {
			elementToken := ValueToken(base+"_"+strconv.Itoa(j), element, v.values)
			v.values.Set(elementToken, element)
			tokens = append(tokens, elementToken)
		}
	}
	return tokens, nil
}

// setElements splits a set or list value into scalar values; nil for
// anything else.
func setElements(av types.AttributeValue) []types.AttributeValue {
	var out []types.AttributeValue
	switch t := av.(type) {
	case *types.AttributeValueMemberSS:
		out = make([]types.AttributeValue, 0, len(t.Value))
		for _, e := range t.Value {
			out = append(out, &types.AttributeValueMemberS{Value: e})
		}
	case *types.AttributeValueMemberNS:
		out = make([]types.AttributeValue, 0, len(t.Value))
		for _, e := range t.Value {
			out = append(out, &types.AttributeValueMemberN{Value: e})
		}
	case *types.AttributeValueMemberBS:
		out = make([]types.AttributeValue, 0, len(t.Value))
		for _, e := range t.Value {
			out = append(out, &types.AttributeValueMemberB{Value: e})
		}
	case *types.AttributeValueMemberL:
		out = append([]types.AttributeValue{}, t.Value...)
	}
	return out
}

// readMember follows a member chain through structs, maps with string keys
// and list indexes.
func readMember(value any, path []string) (any, error) {
	rv := reflect.ValueOf(value)
	for _, segment := range path {
		name, index := splitIndex(segment)
		rv = indirect(rv)
		switch rv.Kind() {
		case reflect.Struct:
			field := rv.FieldByName(name)
			if !field.IsValid() {
				return nil, errors.Wrapf(ErrInvalidFieldPath, "%s has no field %s", rv.Type(), name)
			}
			rv = field
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return nil, errors.Wrapf(ErrInvalidFieldPath, "%s is not keyed by strings", rv.Type())
			}
			rv = rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if !rv.IsValid() {
				return nil, errors.Wrapf(ErrInvalidFieldPath, "no key %s", name)
			}
		default:
			return nil, errors.Wrapf(ErrInvalidFieldPath, "cannot read %s of %s", name, rv.Kind())
		}
		for index != "" {
			end := strings.IndexByte(index, ']')
			if index[0] != '[' || end < 0 {
				return nil, errors.Wrapf(ErrInvalidFieldPath, "unterminated index %s", index)
			}
			i, err := strconv.Atoi(index[1:end])
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidFieldPath, "index %s", index[:end+1])
			}
			rv = indirect(rv)
			if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || i < 0 || i >= rv.Len() {
				return nil, errors.Wrapf(ErrInvalidFieldPath, "index %d out of range", i)
			}
			rv = rv.Index(i)
			index = index[end+1:]
		}
	}
	if !rv.IsValid() || !rv.CanInterface() {
		return nil, errors.Wrap(ErrInvalidFieldPath, "unreadable member")
	}
	return rv.Interface(), nil
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv
		}
		rv = rv.Elem()
	}
	return rv
}
