package s3kv

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dogmatiq/propertykit/driver/aws/internal/awsx"
	"github.com/dogmatiq/propertykit/driver/aws/internal/s3x"
	"github.com/dogmatiq/propertykit/internal/errorx"
	"github.com/dogmatiq/propertykit/kv"
)

type keyspace struct {
	client          *s3.Client
	onRequest       func(any) []func(*s3.Options)
	name            string
	bucket          string
	objectKeyPrefix string
}

func (ks *keyspace) Name() string {
	return ks.name
}

func (ks *keyspace) Get(ctx context.Context, k []byte) (v []byte, err error) {
	defer errorx.Wrap(&err, "unable to get %x from the %q keyspace", k, ks.name)
	return ks.get(ctx, ks.objectKey(k))
}

func (ks *keyspace) get(ctx context.Context, objectKey *string) ([]byte, error) {
	res, err := awsx.Do(
		ctx,
		ks.client.GetObject,
		ks.onRequest,
		&s3.GetObjectInput{
			Bucket: &ks.bucket,
			Key:    objectKey,
		},
	)
	if err != nil {
		return nil, s3x.IgnoreNotExists(err)
	}
	defer res.Body.Close()

	return io.ReadAll(res.Body)
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (ok bool, err error) {
	defer errorx.Wrap(&err, "unable to check for %x in the %q keyspace", k, ks.name)

	if _, err := awsx.Do(
		ctx,
		ks.client.HeadObject,
		ks.onRequest,
		&s3.HeadObjectInput{
			Bucket: &ks.bucket,
			Key:    ks.objectKey(k),
		},
	); err != nil {
		return false, s3x.IgnoreNotExists(err)
	}

	return true, nil
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) (err error) {
	defer errorx.Wrap(&err, "unable to set %x in the %q keyspace", k, ks.name)

	if len(v) == 0 {
		_, err := awsx.Do(
			ctx,
			ks.client.DeleteObject,
			ks.onRequest,
			&s3.DeleteObjectInput{
				Bucket: &ks.bucket,
				Key:    ks.objectKey(k),
			},
		)
		return s3x.IgnoreNotExists(err)
	}

	_, err = awsx.Do(
		ctx,
		ks.client.PutObject,
		ks.onRequest,
		&s3.PutObjectInput{
			Bucket:        &ks.bucket,
			Key:           ks.objectKey(k),
			ContentType:   aws.String("application/octet-stream"),
			ContentLength: aws.Int64(int64(len(v))),
			Body:          bytes.NewReader(v),
		},
	)

	return err
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	req := &s3.ListObjectsV2Input{
		Bucket: &ks.bucket,
		Prefix: &ks.objectKeyPrefix,
	}

	for {
		res, err := awsx.Do(
			ctx,
			ks.client.ListObjectsV2,
			ks.onRequest,
			req,
		)
		if err != nil {
			return fmt.Errorf("unable to list the %q keyspace: %w", ks.name, err)
		}

		for _, obj := range res.Contents {
			k, err := ks.keyFromObjectKey(aws.ToString(obj.Key))
			if err != nil {
				return err
			}

			v, err := ks.get(ctx, obj.Key)
			if err != nil {
				return fmt.Errorf("unable to get %x from the %q keyspace: %w", k, ks.name, err)
			}

			// The object was deleted after it was listed.
			if len(v) == 0 {
				continue
			}

			ok, err := fn(ctx, k, v)
			if !ok || err != nil {
				return err
			}
		}

		if !aws.ToBool(res.IsTruncated) {
			return nil
		}

		req.ContinuationToken = res.NextContinuationToken
	}
}

func (ks *keyspace) EraseAll(ctx context.Context) error {
	if err := s3x.DeleteObjects(
		ctx,
		ks.client,
		ks.bucket,
		ks.objectKeyPrefix,
		ks.onRequest,
	); err != nil {
		return fmt.Errorf("unable to erase the %q keyspace: %w", ks.name, err)
	}

	return nil
}

func (ks *keyspace) Close() error {
	return nil
}

// objectKey returns the key of the object that holds the value for k.
//
// Keys are hex encoded so that arbitrary binary keys form valid object keys
// and list in the same order as the raw bytes.
func (ks *keyspace) objectKey(k []byte) *string {
	return aws.String(ks.objectKeyPrefix + hex.EncodeToString(k))
}

// keyFromObjectKey is the inverse of objectKey.
func (ks *keyspace) keyFromObjectKey(objectKey string) ([]byte, error) {
	k, err := hex.DecodeString(strings.TrimPrefix(objectKey, ks.objectKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("the %q keyspace contains an invalid object key %q: %w", ks.name, objectKey, err)
	}
	return k, nil
}
