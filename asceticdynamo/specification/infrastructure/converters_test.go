package specification

import (
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
)

func TestConvertScalars(t *testing.T) {
	reg := NewDefaultConverterRegistry()
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ul := ulid.MustParse("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("X", 3600))

	cases := map[string]struct {
		in   any
		want types.AttributeValue
	}{
		"string":     {"a", str("a")},
		"int":        {42, num("42")},
		"float":      {1.5, num("1.5")},
		"bool":       {true, &types.AttributeValueMemberBOOL{Value: true}},
		"nil":        {nil, &types.AttributeValueMemberNULL{Value: true}},
		"bytes":      {[]byte("ab"), &types.AttributeValueMemberB{Value: []byte("ab")}},
		"uuid":       {u, str("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
		"ulid":       {ul, str("01ARZ3NDEKTSV4RRFFQ69G5FAV")},
		"time":       {ts, str("2024-03-01T11:30:00Z")},
		"type":       {s.BOOL, str("BOOL")},
		"string set": {[]string{"a", "b"}, &types.AttributeValueMemberSS{Value: []string{"a", "b"}}},
		"number set": {[]int{1, 2}, &types.AttributeValueMemberNS{Value: []string{"1", "2"}}},
		"mixed list": {[]any{"a", 1}, &types.AttributeValueMemberL{Value: []types.AttributeValue{str("a"), num("1")}}},
		"wire value": {str("raw"), str("raw")},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := reg.Convert(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestConvertUnsupported(t *testing.T) {
	_, err := NewDefaultConverterRegistry().Convert(func() {})
	assert.ErrorIs(t, err, ErrUnconvertibleValue)
}

type money struct {
	cents int64
}

func TestRegisterConverter(t *testing.T) {
	reg := NewDefaultConverterRegistry().Clone()
	RegisterConverter(reg, func(m money) (types.AttributeValue, error) {
		return num("12.34"), nil
	})
	got, err := reg.Convert(money{cents: 1234})
	require.NoError(t, err)
	assert.Equal(t, num("12.34"), got)

	_, ok := NewDefaultConverterRegistry().Lookup(reflect.TypeOf(money{}))
	assert.False(t, ok)
}

func TestConvertElements(t *testing.T) {
	got, err := NewDefaultConverterRegistry().ConvertElements([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []types.AttributeValue{num("1"), num("2")}, got)

	_, err = NewDefaultConverterRegistry().ConvertElements("scalar")
	assert.ErrorIs(t, err, ErrUnconvertibleValue)
}

func TestSyntheticName(t *testing.T) {
	assert.Equal(t, "pString", SyntheticName("x"))
	assert.Equal(t, "pInt", SyntheticName(1))
	assert.Equal(t, "pInt64", SyntheticName(int64(1)))
	assert.Equal(t, "pFloat64", SyntheticName(1.5))
	assert.Equal(t, "pBool", SyntheticName(true))
	assert.Equal(t, "pAttributeType", SyntheticName(s.NS))
	assert.Equal(t, "pUUID", SyntheticName(uuid.New()))
	assert.Equal(t, "pSlice", SyntheticName([]string{"a"}))
	assert.Equal(t, "pNull", SyntheticName(nil))
}
