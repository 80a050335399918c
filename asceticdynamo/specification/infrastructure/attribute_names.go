package specification

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	NameSigil  = "#"
	ValueSigil = ":"
)

// NameToken turns an attribute name into its "#name" substitution token.
// A segment that already carries the sigil passes through unchanged.
func NameToken(segment string) string {
	if strings.HasPrefix(segment, NameSigil) {
		return segment
	}
	return NameSigil + segment
}

// NamePath tokenizes every segment of a dotted document path:
// "a.b[0].c" becomes "#a.#b[0].#c".
func NamePath(path string) string {
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		segments[i] = NameToken(segment)
	}
	return strings.Join(segments, ".")
}

// NameEntries returns the substitution table entries a document path needs,
// token to raw attribute name, one per segment.
func NameEntries(path string) map[string]string {
	entries := make(map[string]string)
	for _, segment := range strings.Split(path, ".") {
		name, _ := splitIndex(strings.TrimPrefix(segment, NameSigil))
		entries[NameToken(name)] = name
	}
	return entries
}

// splitIndex separates "items[0][1]" into "items" and "[0][1]".
func splitIndex(segment string) (name, index string) {
	if i := strings.IndexByte(segment, '['); i >= 0 {
		return segment[:i], segment[i:]
	}
	return segment, ""
}

// Bindings is a read-only view of already allocated value tokens.
type Bindings interface {
	Lookup(token string) (types.AttributeValue, bool)
	Len() int
}

// ValueToken picks the ":name" token for value. A token already bound to an
// equal value is reused; a token bound to a different value gets a numeric
// suffix, starting after the number of existing bindings, until a free or
// equal binding is found.
func ValueToken(candidate string, value types.AttributeValue, bindings Bindings) string {
	if strings.HasPrefix(candidate, ValueSigil) {
		candidate = candidate[len(ValueSigil):]
	}
	token := ValueSigil + candidate
	counter := bindings.Len() + 1
	for {
		bound, ok := bindings.Lookup(token)
		if !ok || EqualValues(bound, value) {
			return token
		}
		token = ValueSigil + candidate + strconv.Itoa(counter)
		counter++
	}
}

// EqualValues compares two wire values structurally.
func EqualValues(a, b types.AttributeValue) bool {
	return reflect.DeepEqual(a, b)
}

// valueTable is an insertion-ordered token to value map.
type valueTable struct {
	tokens []string
	values map[string]types.AttributeValue
}

func newValueTable() *valueTable {
	return &valueTable{values: make(map[string]types.AttributeValue)}
}

func (t *valueTable) Lookup(token string) (types.AttributeValue, bool) {
	v, ok := t.values[token]
	return v, ok
}

func (t *valueTable) Len() int {
	return len(t.tokens)
}

func (t *valueTable) Set(token string, value types.AttributeValue) {
	if _, ok := t.values[token]; !ok {
		t.tokens = append(t.tokens, token)
	}
	t.values[token] = value
}

func (t *valueTable) Map() map[string]types.AttributeValue {
	m := make(map[string]types.AttributeValue, len(t.values))
	for k, v := range t.values {
		m[k] = v
	}
	return m
}

// pendingBindings resolves a token against the working condition first,
// then against everything already flushed.
type pendingBindings struct {
	pending *valueTable
	flushed *valueTable
}

func (b pendingBindings) Lookup(token string) (types.AttributeValue, bool) {
	if v, ok := b.pending.Lookup(token); ok {
		return v, true
	}
	return b.flushed.Lookup(token)
}

func (b pendingBindings) Len() int {
	n := b.flushed.Len()
	for _, token := range b.pending.tokens {
		if _, ok := b.flushed.Lookup(token); !ok {
			n++
		}
	}
	return n
}
