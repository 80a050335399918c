package specification

import (
	"fmt"
	"strings"
)

// ExtractFieldPath returns the segments of a field access, outermost first.
func ExtractFieldPath(n FieldNode) []string {
	path := []string{n.Name()}
	var obj EmptiableObject = n.Object()
	for !obj.IsRoot() {
		path = append([]string{obj.Name()}, path...)
		obj = obj.Parent()
	}
	return path
}

// RootOf walks a member chain up to its root: GlobalScopeNode for record
// attributes, CapturedNode for values read from the caller's scope.
func RootOf(n FieldNode) EmptiableObject {
	var obj EmptiableObject = n.Object()
	for !obj.IsRoot() {
		obj = obj.Parent()
	}
	return obj
}

// IsSubjectField reports whether n addresses an attribute of the record.
func IsSubjectField(n FieldNode) bool {
	_, ok := RootOf(n).(GlobalScopeNode)
	return ok
}

// Path builds a field access on the subject from a document path such as
// "innerObject.pk" or "items[0].price".
//
// Panics on a malformed path; use ParsePath for untrusted input.
func Path(path string) FieldNode {
	n, err := ParsePath(path)
	if err != nil {
		panic(err)
	}
	return n
}

// ParsePath parses a dotted document path. List indexes stay attached to
// their segment ("items[0]").
func ParsePath(path string) (FieldNode, error) {
	return ParsePathFrom(GlobalScope(), path)
}

// ParsePathFrom is ParsePath with an explicit root.
func ParsePathFrom(root EmptiableObject, path string) (FieldNode, error) {
	if path == "" {
		return FieldNode{}, fmt.Errorf("empty document path")
	}
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if err := ValidateSegment(segment); err != nil {
			return FieldNode{}, fmt.Errorf("document path %q: %w", path, err)
		}
	}
	parent := root
	for _, segment := range segments[:len(segments)-1] {
		parent = Object(parent, segment)
	}
	return Field(parent, segments[len(segments)-1]), nil
}

// ValidateSegment checks one path segment: an attribute name followed by
// zero or more numeric list indexes.
func ValidateSegment(segment string) error {
	if segment == "" {
		return fmt.Errorf("empty segment")
	}
	name := segment
	if i := strings.IndexByte(segment, '['); i >= 0 {
		name = segment[:i]
		rest := segment[i:]
		for rest != "" {
			if rest[0] != '[' {
				return fmt.Errorf("unexpected %q in segment %q", rest[0], segment)
			}
			end := strings.IndexByte(rest, ']')
			if end < 2 {
				return fmt.Errorf("malformed index in segment %q", segment)
			}
			for _, c := range rest[1:end] {
				if c < '0' || c > '9' {
					return fmt.Errorf("non-numeric index in segment %q", segment)
				}
			}
			rest = rest[end+1:]
		}
	}
	if name == "" {
		return fmt.Errorf("segment %q has no attribute name", segment)
	}
	return nil
}
