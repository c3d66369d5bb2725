// Package typedproperty provides a typed view of the properties of a single
// interface within a [property.Store].
package typedproperty

import (
	"context"

	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/marshaler"
	"github.com/dogmatiq/propertykit/property"
)

// A RangeFunc is a function used to range over the properties of an
// [Interface].
//
// If err is non-nil, ranging stops and err is propagated up the stack.
// Otherwise, if ok is false, ranging stops without any error being propagated.
type RangeFunc[T any] func(ctx context.Context, path string, v T) (ok bool, err error)

// Interface is a collection of properties of type T that belong to the same
// interface.
type Interface[T any, M marshaler.Marshaler[T]] struct {
	Store     *property.Store
	Name      string
	Marshaler M
}

// Get returns the value of the property at path.
//
// If the property is not present v is the zero-value and ok is false.
func (i Interface[T, M]) Get(ctx context.Context, path string) (v T, ok bool, err error) {
	data, err := i.Store.Load(ctx, i.Name, path)
	if fault.IsNotFound(err) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}

	v, err = i.Marshaler.Unmarshal(data)
	return v, err == nil, err
}

// Has returns true if the property at path is present.
func (i Interface[T, M]) Has(ctx context.Context, path string) (bool, error) {
	_, err := i.Store.Size(ctx, i.Name, path)
	if fault.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Contains returns true if the property at path holds a value that marshals
// to the same bytes as v.
//
// It returns an error matching [fault.ErrNotFound] if the property is not
// present.
func (i Interface[T, M]) Contains(ctx context.Context, path string, v T) (bool, error) {
	data, err := i.Marshaler.Marshal(v)
	if err != nil {
		return false, err
	}
	return i.Store.Contains(ctx, i.Name, path, data)
}

// Set sets the value of the property at path.
//
// If v is marshaled to an empty byte-slice, the property is deleted.
func (i Interface[T, M]) Set(ctx context.Context, path string, v T) error {
	data, err := i.Marshaler.Marshal(v)
	if err != nil {
		return err
	}
	return i.Store.Store(ctx, i.Name, path, data)
}

// Delete removes the property at path.
func (i Interface[T, M]) Delete(ctx context.Context, path string) error {
	return i.Store.Delete(ctx, i.Name, path)
}

// Range invokes fn for each property of the interface in an undefined order.
func (i Interface[T, M]) Range(ctx context.Context, fn RangeFunc[T]) error {
	return i.Store.Range(
		ctx,
		func(ctx context.Context, p property.Property) (bool, error) {
			if p.Interface != i.Name {
				return true, nil
			}

			v, err := i.Marshaler.Unmarshal(p.Value)
			if err != nil {
				return false, err
			}

			return fn(ctx, p.Path, v)
		},
	)
}
