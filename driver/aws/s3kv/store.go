// Package s3kv provides a [kv.Store] backed by an S3 bucket.
//
// Each key/value pair is stored as a separate object. It suits small, rarely
// written keyspaces such as configuration or property caches.
package s3kv

import (
	"context"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dogmatiq/propertykit/driver/aws/internal/s3x"
	"github.com/dogmatiq/propertykit/internal/syncx"
	"github.com/dogmatiq/propertykit/kv"
)

// store is an implementation of [kv.Store] that persists to an S3 bucket.
type store struct {
	Client    *s3.Client
	Bucket    string
	OnRequest func(any) []func(*s3.Options)

	createBucketOnce syncx.SucceedOnce
}

// NewStore returns a new [kv.Store] that uses the given S3 client to store
// key/value pairs in the given bucket.
//
// The bucket is created on first use if it does not already exist.
func NewStore(
	client *s3.Client,
	bucket string,
	options ...Option,
) kv.Store {
	if bucket == "" {
		panic("bucket name must not be empty")
	}

	s := &store{
		Client: client,
		Bucket: bucket,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option is a functional option that changes the behavior of [NewStore].
type Option func(*store)

// WithRequestHook is an [Option] that configures fn as a pre-request hook.
//
// Before each S3 API request, fn is passed a pointer to the input struct, e.g.
// [s3.GetObjectInput], which it may modify in-place. It may be called with any
// S3 request type. The types of requests used may change in any version without
// notice.
//
// Any functions returned by fn will be applied to the request's options before
// the request is sent.
func WithRequestHook(fn func(any) []func(*s3.Options)) Option {
	return func(s *store) {
		s.OnRequest = fn
	}
}

// Open returns the keyspace with the given name.
func (s *store) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	if err := s.createBucketOnce.Do(ctx, s.createBucket); err != nil {
		return nil, err
	}

	return &keyspace{
		client:          s.Client,
		onRequest:       s.OnRequest,
		name:            name,
		bucket:          s.Bucket,
		objectKeyPrefix: "kv/" + url.PathEscape(name) + "/",
	}, nil
}

func (s *store) createBucket(ctx context.Context) error {
	return s3x.CreateBucketIfNotExists(
		ctx,
		s.Client,
		s.Bucket,
		s.OnRequest,
	)
}
