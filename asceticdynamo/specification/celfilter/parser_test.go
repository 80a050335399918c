package celfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	specification "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

func compile(t *testing.T, text string, opts ...Option) specification.Expression {
	t.Helper()
	n, err := Parse(text, opts...)
	require.NoError(t, err)
	expr, err := specification.BuildExpression(n)
	require.NoError(t, err)
	return expr
}

func TestParseCompiles(t *testing.T) {
	cases := map[string]string{
		`pk == "A"`:                   "#pk = :pString",
		`pk == "A" && sk != "B"`:      "#pk = :pString AND #sk <> :pString2",
		`a == 1 || (b < 2 && c >= 3)`: "#a = :pInt64 OR (#b < :pInt642 AND #c >= :pInt643)",
		`!(a > 1)`:                    "NOT #a > :pInt64",
		`5 < age`:                     "#age > :pInt64",
		`age > -5`:                    "#age > :pInt64",
		`meta.owner.name == "x"`:      "#meta.#owner.#name = :pString",
		`items[1].price <= 2.5`:       "#items[1].#price <= :pFloat64",
		`sk.startsWith("ORDER#")`:     "begins_with(#sk, :pString)",
		`begins_with(sk, "ORDER#")`:   "begins_with(#sk, :pString)",
		`tags.contains("red")`:        "contains(#tags, :pString)",
		`contains(tags, "red")`:       "contains(#tags, :pString)",
		`size(tags) > 2`:              "size(#tags) > :pInt64",
		`tags.size() > 2`:             "size(#tags) > :pInt64",
		`has(meta.owner)`:             "attribute_exists(#meta.#owner)",
		`attribute_exists(meta)`:      "attribute_exists(#meta)",
		`attribute_not_exists(meta)`:  "attribute_not_exists(#meta)",
		`attribute_type(tags, "SS")`:  "attribute_type(#tags, :pAttributeType)",
		`between(age, 18, 65)`:        "#age BETWEEN :pInt64 AND :pInt642",
		`status in ["NEW", "OPEN"]`:   "#status IN (:pSlice_0, :pSlice_1)",
	}
	for text, statement := range cases {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, statement, compile(t, text).Statement)
		})
	}
}

func TestParseWithBindings(t *testing.T) {
	req := struct{ Owner string }{Owner: "bob"}
	expr := compile(t, `pk == id && owner == req.Owner && status in statuses`, WithBindings(map[string]any{
		"id":       "ORDER#1",
		"req":      req,
		"statuses": []string{"NEW", "OPEN"},
	}))
	assert.Equal(t, "(#pk = :id AND #owner = :Owner) AND #status IN (:statuses_0, :statuses_1)", expr.Statement)
	assert.Len(t, expr.Values, 4)
}

func TestParseMembershipWithAttributeArgument(t *testing.T) {
	expr := compile(t, `contains(arr, name)`, WithBindings(map[string]any{"arr": []string{"a", "b"}}))
	assert.Equal(t, "#name IN (:arr_0, :arr_1)", expr.Statement)

	expr = compile(t, `arr.contains(name)`, WithBindings(map[string]any{"arr": []string{"a", "b"}}))
	assert.Equal(t, "#name IN (:arr_0, :arr_1)", expr.Statement)

	for _, text := range []string{`"abcdef".startsWith(name)`, `"abc".contains(name)`} {
		t.Run(text, func(t *testing.T) {
			n, err := Parse(text)
			require.NoError(t, err)
			_, err = specification.BuildExpression(n)
			assert.ErrorIs(t, err, specification.ErrInvalidFieldPath)
		})
	}
}

func TestParseWithSubject(t *testing.T) {
	expr := compile(t, `item.pk == "A" && has(item.ttl)`, WithSubject("item"))
	assert.Equal(t, "#pk = :pString AND attribute_exists(#ttl)", expr.Statement)

	_, err := Parse(`other.pk == "A"`, WithSubject("item"))
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = Parse(`pk ==`)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = Parse(`tags.exists(t, t == "x")`)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)

	_, err = Parse(`sk.endsWith("x")`)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)

	_, err = Parse(`status in [kind]`)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
}
