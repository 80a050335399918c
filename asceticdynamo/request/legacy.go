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

// LegacyScanInput builds a Scan request with a ScanFilter instead of a
// filter expression.
func LegacyScanInput(table string, filter s.Visitable, opts ...spec.DynamodbVisitorOption) (*dynamodb.ScanInput, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if filter == nil {
		return input, nil
	}
	conditions, op, err := legacyFilter(filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "filter")
	}
	input.ScanFilter = conditions
	input.ConditionalOperator = op
	return input, nil
}

// LegacyQueryInput builds a Query request with KeyConditions and a
// QueryFilter.
func LegacyQueryInput(table string, key, filter s.Visitable, opts ...spec.DynamodbVisitorOption) (*dynamodb.QueryInput, error) {
	if key == nil {
		return nil, ErrMissingKeyCondition
	}
	var result error
	keyConditions, err := spec.BuildConditions(key, with(opts, spec.WithAllowedOperations(spec.KeyConditionsOnly))...)
	if err != nil {
		result = multierror.Append(result, errors.Wrap(err, "key condition"))
	}
	input := &dynamodb.QueryInput{TableName: aws.String(table), KeyConditions: keyConditions}
	if filter != nil {
		conditions, op, err := legacyFilter(filter, opts)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, "filter"))
		}
		input.QueryFilter = conditions
		input.ConditionalOperator = op
	}
	if result != nil {
		return nil, result
	}
	return input, nil
}

// legacyFilter compiles filter to a condition map. Unlike BuildConditions
// it fails when some condition has no legacy form.
func legacyFilter(
	filter s.Visitable, opts []spec.DynamodbVisitorOption,
) (map[string]types.Condition, types.ConditionalOperator, error) {
	v := spec.NewDynamodbVisitor(opts...)
	if err := filter.Accept(v); err != nil {
		return nil, "", err
	}
	conditions, err := v.Conditions()
	if err != nil {
		return nil, "", err
	}
	if !v.LegacyComplete() {
		exp, _ := v.Expression()
		return nil, "", errors.Wrapf(spec.ErrUnsupportedOperator, "%q has no legacy form", exp.Statement)
	}
	op, err := v.ConditionalOperator()
	if err != nil {
		return nil, "", err
	}
	if len(conditions) < 2 {
		op = ""
	}
	return conditions, op, nil
}
