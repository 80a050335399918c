package specification

import (
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// AttributeTag is the struct tag the attributevalue encoder reads; the same
// names are used when compiling predicates.
const AttributeTag = "dynamodbav"

// AttributeSchema maps record field paths to wire attribute names. Fields
// without an explicit mapping keep their own name.
type AttributeSchema struct {
	// attributes maps a dotted field path ("InnerObject.Id") to the wire
	// name of its last segment ("pk").
	attributes map[string]string
}

// NewAttributeSchema creates an empty schema (identity mapping).
func NewAttributeSchema() *AttributeSchema {
	return &AttributeSchema{
		attributes: make(map[string]string),
	}
}

// Register maps the field at fieldPath to attributeName.
func (r *AttributeSchema) Register(fieldPath, attributeName string) *AttributeSchema {
	r.attributes[fieldPath] = attributeName
	return r
}

// Get returns the explicit mapping for a field path.
func (r *AttributeSchema) Get(fieldPath string) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.attributes[fieldPath]
	return name, ok
}

// Len returns the number of explicit mappings.
func (r *AttributeSchema) Len() int {
	if r == nil {
		return 0
	}
	return len(r.attributes)
}

// Resolve maps a field path, segment by segment, to its wire path.
func (r *AttributeSchema) Resolve(path []string) []string {
	resolved := make([]string, len(path))
	prefix := make([]string, 0, len(path))
	for i, segment := range path {
		name, index := splitIndex(segment)
		prefix = append(prefix, name)
		if mapped, ok := r.Get(strings.Join(prefix, ".")); ok {
			name = mapped
		}
		resolved[i] = name + index
	}
	return resolved
}

// SchemaOf builds a schema from the dynamodbav tags of a struct, descending
// into nested structs, pointers and slices of structs.
func SchemaOf(sample any) (*AttributeSchema, error) {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Errorf("schema source must be a struct, got %T", sample)
	}
	schema := NewAttributeSchema()
	var result *multierror.Error
	collectAttributes(schema, t, "", map[reflect.Type]bool{}, &result)
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return schema, nil
}

func collectAttributes(schema *AttributeSchema, t reflect.Type, prefix string, seen map[reflect.Type]bool, result **multierror.Error) {
	if seen[t] {
		return
	}
	seen[t] = true
	defer delete(seen, t)

	names := make(map[string]string)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, skip := attributeName(f)
		if skip {
			continue
		}
		if other, ok := names[name]; ok {
			*result = multierror.Append(*result, errors.Errorf(
				"%s: fields %s and %s both map to attribute %q", t.Name(), other, f.Name, name,
			))
			continue
		}
		names[name] = f.Name
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if name != f.Name {
			schema.Register(path, name)
		}
		if nested := structType(f.Type); nested != nil {
			collectAttributes(schema, nested, path, seen, result)
		}
	}
}

func attributeName(f reflect.StructField) (name string, skip bool) {
	tag := f.Tag.Get(AttributeTag)
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, false
}

func structType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.PkgPath() == "time" {
		return nil
	}
	return t
}
