package request

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	spec "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

type order struct {
	Id       string   `dynamodbav:"pk"`
	Sort     string   `dynamodbav:"sk"`
	Total    int      `dynamodbav:"total"`
	Tags     []string `dynamodbav:"tags,stringset"`
	Archived bool     `dynamodbav:"archived"`
}

const (
	orderId = "ORDER#42"
	prefix  = "LINE#"
)

func orderSchema(t *testing.T) spec.DynamodbVisitorOption {
	t.Helper()
	schema, err := spec.SchemaOf(order{})
	require.NoError(t, err)
	return spec.WithSchema(schema)
}

func str(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func num(v string) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: v}
}

func TestScanInput(t *testing.T) {
	filter := s.And(
		s.GreaterThan(s.Path("Total"), s.Value(100)),
		s.BeginsWith(s.Path("Sort"), s.Value(prefix)),
	)
	input, err := ScanInput("orders", filter, orderSchema(t))
	require.NoError(t, err)

	assert.Equal(t, "orders", aws.ToString(input.TableName))
	assert.Equal(t, "#total > :pInt AND begins_with(#sk, :pString)", aws.ToString(input.FilterExpression))
	assert.Equal(t, map[string]string{"#total": "total", "#sk": "sk"}, input.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{":pInt": num("100"), ":pString": str(prefix)}, input.ExpressionAttributeValues)
}

func TestScanInputWithoutFilter(t *testing.T) {
	input, err := ScanInput("orders", nil)
	require.NoError(t, err)
	assert.Nil(t, input.FilterExpression)
	assert.Nil(t, input.ExpressionAttributeNames)
	assert.Nil(t, input.ExpressionAttributeValues)
}

func TestQueryInputSharesSubstitutions(t *testing.T) {
	key := s.And(
		s.Equal(s.Path("Id"), s.Value(orderId)),
		s.BeginsWith(s.Path("Sort"), s.Value(prefix)),
	)
	filter := s.Or(
		s.Equal(s.Path("Sort"), s.Value(orderId)),
		s.GreaterThan(s.Path("Total"), s.Value(18)),
	)
	input, err := QueryInput("orders", key, filter, orderSchema(t))
	require.NoError(t, err)

	assert.Equal(t, "#pk = :pString AND begins_with(#sk, :pString2)", aws.ToString(input.KeyConditionExpression))
	assert.Equal(t, "#sk = :pString OR #total > :pInt", aws.ToString(input.FilterExpression))
	assert.Equal(t, map[string]string{"#pk": "pk", "#sk": "sk", "#total": "total"}, input.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{
		":pString":  str(orderId),
		":pString2": str(prefix),
		":pInt":     num("18"),
	}, input.ExpressionAttributeValues)
}

func TestQueryInputWithoutFilter(t *testing.T) {
	input, err := QueryInput("orders", s.Equal(s.Path("Id"), s.Value(orderId)), nil, orderSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "#pk = :pString", aws.ToString(input.KeyConditionExpression))
	assert.Nil(t, input.FilterExpression)
	assert.Equal(t, map[string]string{"#pk": "pk"}, input.ExpressionAttributeNames)
}

func TestQueryInputNeedsKey(t *testing.T) {
	_, err := QueryInput("orders", nil, s.Equal(s.Path("Id"), s.Value(orderId)))
	assert.ErrorIs(t, err, ErrMissingKeyCondition)
}

func TestQueryInputCollectsErrors(t *testing.T) {
	key := s.Or(s.Equal(s.Path("Id"), s.Value(orderId)), s.Equal(s.Path("Id"), s.Value(prefix)))
	filter := s.Equal(s.Path("Total"), s.Path("Id"))

	_, err := QueryInput("orders", key, filter)
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, spec.ErrUnsupportedOperator)
	assert.ErrorIs(t, err, spec.ErrInvalidFieldPath)
}

func TestKeyConditionRejectsFilterOperators(t *testing.T) {
	key := s.Contains(s.Path("Tags"), s.Value("red"))
	_, err := QueryInput("orders", key, nil)
	assert.Error(t, err)
}

func TestConditionalWrites(t *testing.T) {
	item := map[string]types.AttributeValue{"pk": str(orderId)}

	put, err := PutItemInput("orders", item, s.AttributeNotExists(s.Path("Id")), orderSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "attribute_not_exists(#pk)", aws.ToString(put.ConditionExpression))
	assert.Equal(t, map[string]string{"#pk": "pk"}, put.ExpressionAttributeNames)
	assert.Nil(t, put.ExpressionAttributeValues)
	assert.Equal(t, item, put.Item)

	del, err := DeleteItemInput("orders", item, s.Equal(s.Path("Archived"), s.Value(true)), orderSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "#archived = :pBool", aws.ToString(del.ConditionExpression))
	assert.Equal(t, map[string]types.AttributeValue{":pBool": &types.AttributeValueMemberBOOL{Value: true}}, del.ExpressionAttributeValues)

	del, err = DeleteItemInput("orders", item, nil)
	require.NoError(t, err)
	assert.Nil(t, del.ConditionExpression)
}

func TestLegacyScanInput(t *testing.T) {
	filter := s.Or(
		s.Equal(s.Path("Total"), s.Value(30)),
		s.BeginsWith(s.Path("Sort"), s.Value(prefix)),
	)
	input, err := LegacyScanInput("orders", filter, orderSchema(t))
	require.NoError(t, err)

	assert.Nil(t, input.FilterExpression)
	assert.Equal(t, types.ConditionalOperatorOr, input.ConditionalOperator)
	assert.Equal(t, map[string]types.Condition{
		"total": {ComparisonOperator: types.ComparisonOperatorEq, AttributeValueList: []types.AttributeValue{num("30")}},
		"sk":    {ComparisonOperator: types.ComparisonOperatorBeginsWith, AttributeValueList: []types.AttributeValue{str(prefix)}},
	}, input.ScanFilter)
}

func TestLegacyScanInputSingleCondition(t *testing.T) {
	input, err := LegacyScanInput("orders", s.AttributeExists(s.Path("Tags")), orderSchema(t))
	require.NoError(t, err)
	assert.Empty(t, input.ConditionalOperator)
	assert.Equal(t, map[string]types.Condition{
		"tags": {ComparisonOperator: types.ComparisonOperatorNotNull, AttributeValueList: []types.AttributeValue{}},
	}, input.ScanFilter)
}

func TestLegacyScanInputRejectsWhatItCannotExpress(t *testing.T) {
	eq := func(path string, value int) s.Visitable { return s.Equal(s.Path(path), s.Value(value)) }
	cases := map[string]s.Visitable{
		"mixed joins": s.Or(s.And(eq("Total", 1), eq("Sort", 2)), eq("Id", 3)),
		"size":        s.GreaterThan(s.Size(s.Path("Tags")), s.Value(3)),
		"negation":    s.And(eq("Total", 1), s.Not(eq("Sort", 2))),
	}
	for name, filter := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LegacyScanInput("orders", filter, orderSchema(t))
			assert.ErrorIs(t, err, spec.ErrUnsupportedOperator)
		})
	}
}

func TestLegacyQueryInput(t *testing.T) {
	key := s.And(
		s.Equal(s.Path("Id"), s.Value(orderId)),
		s.Between(s.Path("Sort"), s.Value("LINE#1"), s.Value("LINE#9")),
	)
	filter := s.Contains(s.Path("Tags"), s.Value("red"))
	input, err := LegacyQueryInput("orders", key, filter, orderSchema(t))
	require.NoError(t, err)

	assert.Equal(t, map[string]types.Condition{
		"pk": {ComparisonOperator: types.ComparisonOperatorEq, AttributeValueList: []types.AttributeValue{str(orderId)}},
		"sk": {
			ComparisonOperator: types.ComparisonOperatorBetween,
			AttributeValueList: []types.AttributeValue{str("LINE#1"), str("LINE#9")},
		},
	}, input.KeyConditions)
	assert.Equal(t, map[string]types.Condition{
		"tags": {ComparisonOperator: types.ComparisonOperatorContains, AttributeValueList: []types.AttributeValue{str("red")}},
	}, input.QueryFilter)
	assert.Empty(t, input.ConditionalOperator)
}
