package dynamokv

import (
	"context"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/propertykit/driver/aws/internal/awsx"
	"github.com/dogmatiq/propertykit/driver/aws/internal/dynamox"
	"github.com/dogmatiq/propertykit/kv"
)

type keyspace struct {
	Client    *dynamodb.Client
	Table     string
	OnRequest func(any) []func(*dynamodb.Options)

	attr struct {
		Keyspace types.AttributeValueMemberS
		Key      types.AttributeValueMemberB
		Value    types.AttributeValueMemberB
	}

	request struct {
		Get    dynamodb.GetItemInput
		Has    dynamodb.GetItemInput
		Range  dynamodb.QueryInput
		Keys   dynamodb.QueryInput
		Set    dynamodb.PutItemInput
		Delete dynamodb.DeleteItemInput
	}
}

func (ks *keyspace) Name() string {
	return ks.attr.Keyspace.Value
}

func (ks *keyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	ks.attr.Key.Value = k

	out, err := awsx.Do(
		ctx,
		ks.Client.GetItem,
		ks.OnRequest,
		&ks.request.Get,
	)
	if err != nil || out.Item == nil {
		return nil, err
	}

	v, err := dynamox.AttrAs[*types.AttributeValueMemberB](out.Item, valueAttr)
	if err != nil {
		return nil, err
	}

	return v.Value, nil
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (bool, error) {
	ks.attr.Key.Value = k

	out, err := awsx.Do(
		ctx,
		ks.Client.GetItem,
		ks.OnRequest,
		&ks.request.Has,
	)
	if err != nil {
		return false, err
	}

	return out.Item != nil, nil
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) error {
	ks.attr.Key.Value = k

	if len(v) == 0 {
		_, err := awsx.Do(
			ctx,
			ks.Client.DeleteItem,
			ks.OnRequest,
			&ks.request.Delete,
		)
		return err
	}

	ks.attr.Value.Value = v

	_, err := awsx.Do(
		ctx,
		ks.Client.PutItem,
		ks.OnRequest,
		&ks.request.Set,
	)

	return err
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	return dynamox.Range(
		ctx,
		ks.Client,
		ks.OnRequest,
		&ks.request.Range,
		func(ctx context.Context, item map[string]types.AttributeValue) (bool, error) {
			k, err := dynamox.AttrAs[*types.AttributeValueMemberB](item, keyAttr)
			if err != nil {
				return false, err
			}

			v, err := dynamox.AttrAs[*types.AttributeValueMemberB](item, valueAttr)
			if err != nil {
				return false, err
			}

			return fn(ctx, k.Value, v.Value)
		},
	)
}

func (ks *keyspace) EraseAll(ctx context.Context) error {
	var keys []map[string]types.AttributeValue

	if err := dynamox.Range(
		ctx,
		ks.Client,
		ks.OnRequest,
		&ks.request.Keys,
		func(_ context.Context, item map[string]types.AttributeValue) (bool, error) {
			k, err := dynamox.AttrAs[*types.AttributeValueMemberB](item, keyAttr)
			if err != nil {
				return false, err
			}

			keys = append(
				keys,
				map[string]types.AttributeValue{
					keyspaceAttr: &types.AttributeValueMemberS{Value: ks.attr.Keyspace.Value},
					keyAttr:      &types.AttributeValueMemberB{Value: slices.Clone(k.Value)},
				},
			)

			return true, nil
		},
	); err != nil {
		return err
	}

	return dynamox.DeleteItems(ctx, ks.Client, ks.Table, ks.OnRequest, keys)
}

func (ks *keyspace) Close() error {
	return nil
}
