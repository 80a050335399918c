package specification

import (
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
)

// Converter turns a Go value of one specific type into a wire value.
type Converter func(value any) (types.AttributeValue, error)

// ConverterRegistry picks a Converter by the runtime type of a value and
// falls back to attributevalue.Marshal.
type ConverterRegistry struct {
	converters map[reflect.Type]Converter
}

func NewConverterRegistry() *ConverterRegistry {
	return &ConverterRegistry{
		converters: make(map[reflect.Type]Converter),
	}
}

// NewDefaultConverterRegistry knows identifiers, timestamps and attribute
// type descriptors on top of the attributevalue defaults.
func NewDefaultConverterRegistry() *ConverterRegistry {
	reg := NewConverterRegistry()
	RegisterConverter(reg, func(v uuid.UUID) (types.AttributeValue, error) {
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	})
	RegisterConverter(reg, func(v ulid.ULID) (types.AttributeValue, error) {
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	})
	RegisterConverter(reg, func(v time.Time) (types.AttributeValue, error) {
		return &types.AttributeValueMemberS{Value: v.UTC().Format(time.RFC3339Nano)}, nil
	})
	RegisterConverter(reg, convertAttributeType)
	return reg
}

func convertAttributeType(v s.AttributeType) (types.AttributeValue, error) {
	if !v.IsValid() {
		return nil, errors.Wrapf(ErrUnconvertibleValue, "unknown attribute type %q", string(v))
	}
	return &types.AttributeValueMemberS{Value: v.String()}, nil
}

func RegisterConverter[T any](reg *ConverterRegistry, fn func(T) (types.AttributeValue, error)) {
	reg.converters[reflect.TypeFor[T]()] = func(value any) (types.AttributeValue, error) {
		return fn(value.(T))
	}
}

// Lookup returns the converter registered for exactly t.
func (r *ConverterRegistry) Lookup(t reflect.Type) (Converter, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.converters[t]
	return c, ok
}

// Clone copies the registry so callers can extend it without touching a
// shared instance.
func (r *ConverterRegistry) Clone() *ConverterRegistry {
	clone := NewConverterRegistry()
	for t, c := range r.converters {
		clone.converters[t] = c
	}
	return clone
}

// Convert produces the wire value of value. Slices of strings, numbers and
// binaries become sets; other slices become lists.
func (r *ConverterRegistry) Convert(value any) (types.AttributeValue, error) {
	if value == nil {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	if av, ok := value.(types.AttributeValue); ok {
		return av, nil
	}
	if c, ok := r.Lookup(reflect.TypeOf(value)); ok {
		return c(value)
	}
	if elements, ok := Elements(value); ok {
		return r.convertCollection(elements)
	}
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, errors.Wrapf(ErrUnconvertibleValue, "%T: %v", value, err)
	}
	// Functions and channels are skipped by the encoder instead of failing.
	if av == nil {
		return nil, errors.Wrapf(ErrUnconvertibleValue, "%T", value)
	}
	return av, nil
}

// ConvertElements converts each element of a collection value.
func (r *ConverterRegistry) ConvertElements(value any) ([]types.AttributeValue, error) {
	elements, ok := Elements(value)
	if !ok {
		return nil, errors.Wrapf(ErrUnconvertibleValue, "%T is not a collection", value)
	}
	out := make([]types.AttributeValue, 0, len(elements))
	for _, element := range elements {
		av, err := r.Convert(element)
		if err != nil {
			return nil, err
		}
		out = append(out, av)
	}
	return out, nil
}

func (r *ConverterRegistry) convertCollection(elements []any) (types.AttributeValue, error) {
	values := make([]types.AttributeValue, 0, len(elements))
	for _, element := range elements {
		av, err := r.Convert(element)
		if err != nil {
			return nil, err
		}
		values = append(values, av)
	}
	return asSet(values), nil
}

func asSet(values []types.AttributeValue) types.AttributeValue {
	if len(values) == 0 {
		return &types.AttributeValueMemberL{Value: values}
	}
	switch values[0].(type) {
	case *types.AttributeValueMemberS:
		set := make([]string, 0, len(values))
		for _, v := range values {
			sv, ok := v.(*types.AttributeValueMemberS)
			if !ok {
				return &types.AttributeValueMemberL{Value: values}
			}
			set = append(set, sv.Value)
		}
		return &types.AttributeValueMemberSS{Value: set}
	case *types.AttributeValueMemberN:
		set := make([]string, 0, len(values))
		for _, v := range values {
			nv, ok := v.(*types.AttributeValueMemberN)
			if !ok {
				return &types.AttributeValueMemberL{Value: values}
			}
			set = append(set, nv.Value)
		}
		return &types.AttributeValueMemberNS{Value: set}
	case *types.AttributeValueMemberB:
		set := make([][]byte, 0, len(values))
		for _, v := range values {
			bv, ok := v.(*types.AttributeValueMemberB)
			if !ok {
				return &types.AttributeValueMemberL{Value: values}
			}
			set = append(set, bv.Value)
		}
		return &types.AttributeValueMemberBS{Value: set}
	}
	return &types.AttributeValueMemberL{Value: values}
}

// Elements unpacks slices and arrays, except byte strings which are scalars
// on the wire.
func Elements(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out, true
}

// SyntheticName derives a placeholder name for an anonymous literal from
// its type: "pString", "pInt", "pFloat64", "pAttributeType".
func SyntheticName(value any) string {
	if value == nil {
		return "pNull"
	}
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.Kind().String()
	}
	return "p" + cases.Title(language.Und, cases.NoLower).String(name)
}
