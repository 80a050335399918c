package request

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	spec "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

// ErrConditionFailed is returned when a conditional write finds its
// condition false.
var ErrConditionFailed = errors.New("condition failed")

// Client is the part of *dynamodb.Client a Table uses.
type Client interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type TableOption func(*Table)

// WithSchema maps the field paths of predicates to attribute names.
func WithSchema(schema *spec.AttributeSchema) TableOption {
	return func(t *Table) {
		t.schema = schema
	}
}

func WithLogger(logger *slog.Logger) TableOption {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithVisitorOptions passes options to every compilation, e.g. custom
// converters.
func WithVisitorOptions(opts ...spec.DynamodbVisitorOption) TableOption {
	return func(t *Table) {
		t.visitorOptions = append(t.visitorOptions, opts...)
	}
}

// Table runs predicates against one DynamoDB table.
type Table struct {
	client         Client
	name           string
	schema         *spec.AttributeSchema
	logger         *slog.Logger
	visitorOptions []spec.DynamodbVisitorOption
}

func NewTable(client Client, name string, opts ...TableOption) *Table {
	t := &Table{
		client: client,
		name:   name,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for i := range opts {
		opts[i](t)
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) options() []spec.DynamodbVisitorOption {
	opts := []spec.DynamodbVisitorOption{spec.WithLogger(t.logger)}
	if t.schema != nil {
		opts = append(opts, spec.WithSchema(t.schema))
	}
	return append(opts, t.visitorOptions...)
}

// Scan reads every page of a filtered scan.
func (t *Table) Scan(ctx context.Context, filter s.Visitable) ([]map[string]types.AttributeValue, error) {
	input, err := ScanInput(t.name, filter, t.options()...)
	if err != nil {
		return nil, err
	}
	logger := t.logger.With("request", ulid.Make().String(), "table", t.name)
	logger.Debug("scan", "filter", deref(input.FilterExpression))

	var items []map[string]types.AttributeValue
	pages := dynamodb.NewScanPaginator(t.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", t.name)
		}
		items = append(items, page.Items...)
	}
	logger.Debug("scan done", "items", len(items))
	return items, nil
}

// Query reads every page of a query on key, filtered by filter.
func (t *Table) Query(ctx context.Context, key, filter s.Visitable) ([]map[string]types.AttributeValue, error) {
	input, err := QueryInput(t.name, key, filter, t.options()...)
	if err != nil {
		return nil, err
	}
	logger := t.logger.With("request", ulid.Make().String(), "table", t.name)
	logger.Debug("query", "key", deref(input.KeyConditionExpression), "filter", deref(input.FilterExpression))

	var items []map[string]types.AttributeValue
	pages := dynamodb.NewQueryPaginator(t.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "query %s", t.name)
		}
		items = append(items, page.Items...)
	}
	logger.Debug("query done", "items", len(items))
	return items, nil
}

// Put writes item, marshalled with attributevalue.MarshalMap, if condition
// holds. A nil condition writes unconditionally.
func (t *Table) Put(ctx context.Context, item any, condition s.Visitable) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.Wrapf(err, "marshal %T", item)
	}
	input, err := PutItemInput(t.name, av, condition, t.options()...)
	if err != nil {
		return err
	}
	t.logger.Debug("put", "table", t.name, "condition", deref(input.ConditionExpression))
	_, err = t.client.PutItem(ctx, input)
	return t.writeError(err, "put")
}

// Delete removes the item with key if condition holds.
func (t *Table) Delete(ctx context.Context, key map[string]types.AttributeValue, condition s.Visitable) error {
	input, err := DeleteItemInput(t.name, key, condition, t.options()...)
	if err != nil {
		return err
	}
	t.logger.Debug("delete", "table", t.name, "condition", deref(input.ConditionExpression))
	_, err = t.client.DeleteItem(ctx, input)
	return t.writeError(err, "delete")
}

func (t *Table) writeError(err error, op string) error {
	if err == nil {
		return nil
	}
	var failed *types.ConditionalCheckFailedException
	if errors.As(err, &failed) {
		return errors.Wrapf(ErrConditionFailed, "%s %s", op, t.name)
	}
	return errors.Wrapf(err, "%s %s", op, t.name)
}

// ScanInto scans t and unmarshals the items into T.
func ScanInto[T any](ctx context.Context, t *Table, filter s.Visitable) ([]T, error) {
	items, err := t.Scan(ctx, filter)
	if err != nil {
		return nil, err
	}
	return unmarshal[T](items)
}

// QueryInto queries t and unmarshals the items into T.
func QueryInto[T any](ctx context.Context, t *Table, key, filter s.Visitable) ([]T, error) {
	items, err := t.Query(ctx, key, filter)
	if err != nil {
		return nil, err
	}
	return unmarshal[T](items)
}

func unmarshal[T any](items []map[string]types.AttributeValue) ([]T, error) {
	out := make([]T, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal items")
	}
	return out, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
