package kv

import (
	"context"

	"github.com/dogmatiq/propertykit/internal/x/xatomic"
)

// Interceptor defines functions that are invoked around keyspace operations.
//
// It is typically used to inject failures into a [Store] under test.
type Interceptor struct {
	beforeOpen  xatomic.Value[func(string) error]
	beforeGet   xatomic.Value[func(string, []byte) error]
	beforeSet   xatomic.Value[func(string, []byte, []byte) error]
	afterSet    xatomic.Value[func(string, []byte, []byte) error]
	beforeErase xatomic.Value[func(string) error]
}

// BeforeOpen sets the function that is invoked before a [Keyspace] is opened.
func (i *Interceptor) BeforeOpen(fn func(name string) error) {
	i.beforeOpen.Store(fn)
}

// BeforeGet sets the function that is invoked before a value is read, either
// by [Keyspace.Get] or [Keyspace.Has].
func (i *Interceptor) BeforeGet(fn func(keyspace string, k []byte) error) {
	i.beforeGet.Store(fn)
}

// BeforeSet sets the function that is invoked before a key/value pair is set.
func (i *Interceptor) BeforeSet(fn func(keyspace string, k, v []byte) error) {
	i.beforeSet.Store(fn)
}

// AfterSet sets the function that is invoked after a key/value pair is set.
func (i *Interceptor) AfterSet(fn func(keyspace string, k, v []byte) error) {
	i.afterSet.Store(fn)
}

// BeforeEraseAll sets the function that is invoked before a keyspace is
// erased.
func (i *Interceptor) BeforeEraseAll(fn func(keyspace string) error) {
	i.beforeErase.Store(fn)
}

// WithInterceptor returns a [Store] that invokes the functions defined by the
// given [Interceptor] when performing operations on s.
func WithInterceptor(s Store, in *Interceptor) Store {
	if in == nil {
		return s
	}

	return &interceptedStore{
		Next:        s,
		Interceptor: in,
	}
}

type interceptedStore struct {
	Next        Store
	Interceptor *Interceptor
}

func (s *interceptedStore) Open(ctx context.Context, name string) (Keyspace, error) {
	if fn := s.Interceptor.beforeOpen.Load(); fn != nil {
		if err := fn(name); err != nil {
			return nil, err
		}
	}

	next, err := s.Next.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	return &interceptedKeyspace{
		Next:        next,
		Interceptor: s.Interceptor,
	}, nil
}

type interceptedKeyspace struct {
	Next        Keyspace
	Interceptor *Interceptor
}

func (ks *interceptedKeyspace) Name() string {
	return ks.Next.Name()
}

func (ks *interceptedKeyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	if fn := ks.Interceptor.beforeGet.Load(); fn != nil {
		if err := fn(ks.Next.Name(), k); err != nil {
			return nil, err
		}
	}

	return ks.Next.Get(ctx, k)
}

func (ks *interceptedKeyspace) Has(ctx context.Context, k []byte) (bool, error) {
	if fn := ks.Interceptor.beforeGet.Load(); fn != nil {
		if err := fn(ks.Next.Name(), k); err != nil {
			return false, err
		}
	}

	return ks.Next.Has(ctx, k)
}

func (ks *interceptedKeyspace) Set(ctx context.Context, k, v []byte) error {
	if fn := ks.Interceptor.beforeSet.Load(); fn != nil {
		if err := fn(ks.Next.Name(), k, v); err != nil {
			return err
		}
	}

	if err := ks.Next.Set(ctx, k, v); err != nil {
		return err
	}

	if fn := ks.Interceptor.afterSet.Load(); fn != nil {
		if err := fn(ks.Next.Name(), k, v); err != nil {
			return err
		}
	}

	return nil
}

func (ks *interceptedKeyspace) Range(ctx context.Context, fn RangeFunc) error {
	return ks.Next.Range(ctx, fn)
}

func (ks *interceptedKeyspace) EraseAll(ctx context.Context) error {
	if fn := ks.Interceptor.beforeErase.Load(); fn != nil {
		if err := fn(ks.Next.Name()); err != nil {
			return err
		}
	}

	return ks.Next.EraseAll(ctx)
}

func (ks *interceptedKeyspace) Close() error {
	return ks.Next.Close()
}
