package request

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	spec "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

type fakeClient struct {
	scanPages  []*dynamodb.ScanOutput
	queryPages []*dynamodb.QueryOutput
	writeErr   error

	scans   []*dynamodb.ScanInput
	queries []*dynamodb.QueryInput
	puts    []*dynamodb.PutItemInput
	deletes []*dynamodb.DeleteItemInput
}

func (c *fakeClient) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.scans = append(c.scans, params)
	page := c.scanPages[0]
	c.scanPages = c.scanPages[1:]
	return page, nil
}

func (c *fakeClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.queries = append(c.queries, params)
	page := c.queryPages[0]
	c.queryPages = c.queryPages[1:]
	return page, nil
}

func (c *fakeClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.puts = append(c.puts, params)
	return &dynamodb.PutItemOutput{}, c.writeErr
}

func (c *fakeClient) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.deletes = append(c.deletes, params)
	return &dynamodb.DeleteItemOutput{}, c.writeErr
}

func orderItem(id string, total string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk":    str(id),
		"sk":    str(prefix + "1"),
		"total": num(total),
	}
}

func newOrderTable(t *testing.T, client Client) *Table {
	t.Helper()
	schema, err := spec.SchemaOf(order{})
	require.NoError(t, err)
	return NewTable(client, "orders", WithSchema(schema))
}

func TestTableScanReadsAllPages(t *testing.T) {
	lastKey := map[string]types.AttributeValue{"pk": str("ORDER#1")}
	client := &fakeClient{scanPages: []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{orderItem("ORDER#1", "150")}, LastEvaluatedKey: lastKey},
		{Items: []map[string]types.AttributeValue{orderItem("ORDER#2", "200")}},
	}}
	table := newOrderTable(t, client)

	orders, err := ScanInto[order](context.Background(), table, s.GreaterThan(s.Path("Total"), s.Value(100)))
	require.NoError(t, err)

	require.Len(t, client.scans, 2)
	assert.Equal(t, "#total > :pInt", aws.ToString(client.scans[0].FilterExpression))
	assert.Nil(t, client.scans[0].ExclusiveStartKey)
	assert.Equal(t, lastKey, client.scans[1].ExclusiveStartKey)
	assert.Equal(t, []order{
		{Id: "ORDER#1", Sort: prefix + "1", Total: 150},
		{Id: "ORDER#2", Sort: prefix + "1", Total: 200},
	}, orders)
}

func TestTableQuery(t *testing.T) {
	client := &fakeClient{queryPages: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{orderItem(orderId, "10")}},
	}}
	table := newOrderTable(t, client)

	orders, err := QueryInto[order](
		context.Background(), table,
		s.Equal(s.Path("Id"), s.Value(orderId)),
		s.LessThan(s.Path("Total"), s.Value(50)),
	)
	require.NoError(t, err)

	require.Len(t, client.queries, 1)
	assert.Equal(t, "#pk = :pString", aws.ToString(client.queries[0].KeyConditionExpression))
	assert.Equal(t, "#total < :pInt", aws.ToString(client.queries[0].FilterExpression))
	require.Len(t, orders, 1)
	assert.Equal(t, 10, orders[0].Total)
}

func TestTableQueryRejectsInvalidKey(t *testing.T) {
	client := &fakeClient{}
	table := newOrderTable(t, client)

	_, err := table.Query(context.Background(), s.Not(s.Equal(s.Path("Id"), s.Value(orderId))), nil)
	assert.ErrorIs(t, err, spec.ErrUnsupportedOperator)
	assert.Empty(t, client.queries)
}

func TestTablePut(t *testing.T) {
	client := &fakeClient{}
	table := newOrderTable(t, client)

	err := table.Put(context.Background(), order{Id: orderId, Sort: prefix + "1", Total: 5, Tags: []string{"red"}}, s.AttributeNotExists(s.Path("Id")))
	require.NoError(t, err)

	require.Len(t, client.puts, 1)
	assert.Equal(t, "attribute_not_exists(#pk)", aws.ToString(client.puts[0].ConditionExpression))
	assert.Equal(t, str(orderId), client.puts[0].Item["pk"])
	assert.Equal(t, num("5"), client.puts[0].Item["total"])
}

func TestTableConditionFailed(t *testing.T) {
	client := &fakeClient{writeErr: &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}}
	table := newOrderTable(t, client)

	err := table.Delete(context.Background(), map[string]types.AttributeValue{"pk": str(orderId)}, s.AttributeExists(s.Path("Id")))
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestTableWriteErrorIsWrapped(t *testing.T) {
	cause := errors.New("throttled")
	client := &fakeClient{writeErr: cause}
	table := newOrderTable(t, client)

	err := table.Delete(context.Background(), map[string]types.AttributeValue{"pk": str(orderId)}, nil)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConditionFailed)
}
