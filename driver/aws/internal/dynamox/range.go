package dynamox

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RangeFunc is a function that is called for each item in a result set.
type RangeFunc func(context.Context, map[string]types.AttributeValue) (bool, error)

// Range executes a query and calls fn for each item in the result set, fetching
// further pages as necessary.
//
// in is never modified by pagination, so a prepared request may be shared
// between calls. m is applied before each page is requested. It may be nil.
func Range(
	ctx context.Context,
	client *dynamodb.Client,
	m func(any) []func(*dynamodb.Options),
	in *dynamodb.QueryInput,
	fn RangeFunc,
) error {
	pages := dynamodb.NewQueryPaginator(client, in)

	for pages.HasMorePages() {
		var options []func(*dynamodb.Options)
		if m != nil {
			options = m(in)
		}

		out, err := pages.NextPage(ctx, options...)
		if err != nil {
			return err
		}

		for _, item := range out.Items {
			if ok, err := fn(ctx, item); err != nil || !ok {
				return err
			}
		}
	}

	return nil
}
