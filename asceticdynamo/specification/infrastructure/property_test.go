package specification

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
)

var tokenPattern = regexp.MustCompile(`[#:][A-Za-z0-9_]+`)

func randomEqualities(n int) ([]s.Visitable, []string) {
	var (
		predicates []s.Visitable
		fields     []string
	)
	for i := 0; i < n; i++ {
		field := fmt.Sprintf("%s%d", faker.Lorem().Word(), i)
		fields = append(fields, field)
		var value s.Visitable
		switch i % 3 {
		case 0:
			value = s.Value(faker.Name().FirstName())
		case 1:
			value = s.Value(faker.Number().NumberInt(3))
		default:
			value = s.Captured(faker.Lorem().Word(), faker.Lorem().Word())
		}
		predicates = append(predicates, s.Equal(s.Path(field), value))
	}
	return predicates, fields
}

func TestAndOfEqualitiesHasOneConditionPerField(t *testing.T) {
	for round := 0; round < 50; round++ {
		n := 2 + round%6
		predicates, fields := randomEqualities(n)
		result, err := Compile(s.And(predicates[0], predicates[1:]...))
		require.NoError(t, err)

		assert.Len(t, result.Conditions, n)
		for _, field := range fields {
			assert.Contains(t, result.Conditions, field)
			assert.Equal(t, field, result.Expression.Names["#"+field])
		}
	}
}

func TestEveryTokenIsBound(t *testing.T) {
	for round := 0; round < 50; round++ {
		predicates, _ := randomEqualities(2 + round%6)
		joined := s.Or(predicates[0], predicates[1:]...)
		expr, err := BuildExpression(s.Not(joined))
		require.NoError(t, err)

		for _, token := range tokenPattern.FindAllString(expr.Statement, -1) {
			if token[0] == '#' {
				assert.Contains(t, expr.Names, token)
			} else {
				assert.Contains(t, expr.Values, token)
			}
		}
		assert.LessOrEqual(t, len(expr.Values), len(predicates))
	}
}
