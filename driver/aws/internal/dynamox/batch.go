package dynamox

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/propertykit/driver/aws/internal/awsx"
)

// MaxBatchWriteSize is the maximum number of requests in a single
// BatchWriteItem call.
const MaxBatchWriteSize = 25

// DeleteItems deletes the items with the given primary keys from a table,
// in batches of at most [MaxBatchWriteSize].
func DeleteItems(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	m func(any) []func(*dynamodb.Options),
	keys []map[string]types.AttributeValue,
) error {
	for len(keys) != 0 {
		n := min(len(keys), MaxBatchWriteSize)

		requests := make([]types.WriteRequest, 0, n)
		for _, k := range keys[:n] {
			requests = append(
				requests,
				types.WriteRequest{
					DeleteRequest: &types.DeleteRequest{Key: k},
				},
			)
		}

		keys = keys[n:]

		if err := writeBatch(ctx, client, table, m, requests); err != nil {
			return err
		}
	}

	return nil
}

// writeBatch sends requests, resending any that DynamoDB leaves unprocessed.
func writeBatch(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	m func(any) []func(*dynamodb.Options),
	requests []types.WriteRequest,
) error {
	for len(requests) != 0 {
		out, err := awsx.Do(
			ctx,
			client.BatchWriteItem,
			m,
			&dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					table: requests,
				},
			},
		)
		if err != nil {
			return err
		}

		requests = out.UnprocessedItems[table]
	}

	return nil
}
