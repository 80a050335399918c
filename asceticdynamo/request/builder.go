package request

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	spec "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

// ErrMissingKeyCondition is returned by query builders given no key condition.
var ErrMissingKeyCondition = errors.New("query needs a key condition")

// ScanInput builds a Scan request filtered by filter. A nil filter scans the
// whole table.
func ScanInput(table string, filter s.Visitable, opts ...spec.DynamodbVisitorOption) (*dynamodb.ScanInput, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if filter == nil {
		return input, nil
	}
	exp, err := spec.BuildExpression(filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "filter")
	}
	input.FilterExpression = statement(exp)
	input.ExpressionAttributeNames = names(exp)
	input.ExpressionAttributeValues = values(exp)
	return input, nil
}

// QueryInput builds a Query request. The key condition is restricted to the
// key condition operators; the filter shares its substitution tables, so
// equal values bind one token across both statements.
func QueryInput(table string, key, filter s.Visitable, opts ...spec.DynamodbVisitorOption) (*dynamodb.QueryInput, error) {
	if key == nil {
		return nil, ErrMissingKeyCondition
	}
	var result error
	keyExp, err := spec.BuildExpression(key, with(opts, spec.WithAllowedOperations(spec.KeyConditionsOnly))...)
	if err != nil {
		result = multierror.Append(result, errors.Wrap(err, "key condition"))
	}
	all := keyExp
	var filterExp spec.Expression
	if filter != nil {
		filterExp, err = spec.BuildExpression(filter, with(opts, spec.WithSubstitutions(keyExp.Names, keyExp.Values))...)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, "filter"))
		}
		all.Names, all.Values = filterExp.Names, filterExp.Values
	}
	if result != nil {
		return nil, result
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    statement(keyExp),
		FilterExpression:          statement(filterExp),
		ExpressionAttributeNames:  names(all),
		ExpressionAttributeValues: values(all),
	}, nil
}

// PutItemInput builds a PutItem request written only when condition holds.
func PutItemInput(
	table string, item map[string]types.AttributeValue, condition s.Visitable, opts ...spec.DynamodbVisitorOption,
) (*dynamodb.PutItemInput, error) {
	input := &dynamodb.PutItemInput{TableName: aws.String(table), Item: item}
	if condition == nil {
		return input, nil
	}
	exp, err := spec.BuildExpression(condition, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "condition")
	}
	input.ConditionExpression = statement(exp)
	input.ExpressionAttributeNames = names(exp)
	input.ExpressionAttributeValues = values(exp)
	return input, nil
}

func DeleteItemInput(
	table string, key map[string]types.AttributeValue, condition s.Visitable, opts ...spec.DynamodbVisitorOption,
) (*dynamodb.DeleteItemInput, error) {
	input := &dynamodb.DeleteItemInput{TableName: aws.String(table), Key: key}
	if condition == nil {
		return input, nil
	}
	exp, err := spec.BuildExpression(condition, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "condition")
	}
	input.ConditionExpression = statement(exp)
	input.ExpressionAttributeNames = names(exp)
	input.ExpressionAttributeValues = values(exp)
	return input, nil
}

func with(opts []spec.DynamodbVisitorOption, extra ...spec.DynamodbVisitorOption) []spec.DynamodbVisitorOption {
	all := make([]spec.DynamodbVisitorOption, 0, len(opts)+len(extra))
	all = append(all, opts...)
	return append(all, extra...)
}

// Empty statements and substitution maps are left unset.

func statement(exp spec.Expression) *string {
	if exp.IsEmpty() {
		return nil
	}
	return aws.String(exp.Statement)
}

func names(exp spec.Expression) map[string]string {
	if len(exp.Names) == 0 {
		return nil
	}
	return exp.Names
}

func values(exp spec.Expression) map[string]types.AttributeValue {
	if len(exp.Values) == 0 {
		return nil
	}
	return exp.Values
}
