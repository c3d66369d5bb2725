package property

import (
	"bytes"
	"context"
	"slices"

	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/internal/telemetry"
	"github.com/dogmatiq/propertykit/list"
)

// Sizes describes the lengths of the components of a property.
type Sizes struct {
	Interface int
	Path      int
	Value     int
}

// Iterator is a cursor over the properties in a [Store].
//
// The iterator visits a snapshot of the property keys, in lexical order of
// their encoded form, taken when the iterator is created. Values are read when
// requested. Any modification of the store through the same handle invalidates
// the iterator, after which every operation returns [ErrStale].
type Iterator struct {
	store      *Store
	generation uint64
	keys       *list.List
	cursor     *list.Iterator
}

// Iterator returns an iterator positioned at the first property in the store.
//
// It returns an error matching [fault.ErrNotFound] if the store is empty.
func (s *Store) Iterator(ctx context.Context) (*Iterator, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	ctx, span := s.telemetry.StartSpan(ctx, "store.iterator")
	defer span.End()

	keys, err := s.keys(ctx)
	if err != nil {
		s.telemetry.Error(ctx, "store.iterator.error", "unable to enumerate properties", err)
		return nil, err
	}

	span.SetAttributes(telemetry.Int("properties", keys.Len()))

	cursor, err := keys.Iterator()
	if err != nil {
		return nil, err
	}

	return &Iterator{
		store:      s,
		generation: s.generation,
		keys:       keys,
		cursor:     cursor,
	}, nil
}

// HasNext returns true if there is a property after the current one.
func (it *Iterator) HasNext() bool {
	return it.check() == nil && it.cursor.HasNext()
}

// Advance moves the iterator to the next property.
//
// It returns an error matching [fault.ErrNotFound] if the iterator is already
// positioned at the last property.
func (it *Iterator) Advance() error {
	if err := it.check(); err != nil {
		return err
	}
	return it.cursor.Advance()
}

// Property returns the property at the iterator's current position.
func (it *Iterator) Property(ctx context.Context) (Property, error) {
	if err := it.check(); err != nil {
		return Property{}, err
	}

	iface, path, v, err := it.current(ctx)
	if err != nil {
		return Property{}, err
	}

	return Property{iface, path, v}, nil
}

// Sizes returns the lengths of the components of the property at the
// iterator's current position.
func (it *Iterator) Sizes(ctx context.Context) (Sizes, error) {
	return it.Into(ctx, nil, nil, nil)
}

// Into copies the components of the property at the iterator's current
// position into the given buffers, and returns the number of bytes written to
// each.
//
// A nil buffer is not written, and the length of that component is reported
// instead. If any non-nil buffer is too short a [*fault.TooSmallError] is
// returned and none of the buffers are written.
func (it *Iterator) Into(ctx context.Context, iface, path, value []byte) (Sizes, error) {
	if err := it.check(); err != nil {
		return Sizes{}, err
	}

	i, p, v, err := it.current(ctx)
	if err != nil {
		return Sizes{}, err
	}

	fields := []struct {
		name string
		buf  []byte
		data []byte
	}{
		{"interface", iface, []byte(i)},
		{"path", path, []byte(p)},
		{"value", value, v},
	}

	for _, f := range fields {
		if f.buf != nil && len(f.buf) < len(f.data) {
			return Sizes{}, &fault.TooSmallError{
				Field:    f.name,
				Required: len(f.data),
				Capacity: len(f.buf),
			}
		}
	}

	var n [3]int
	for x, f := range fields {
		n[x], _ = fill(f.name, f.buf, f.data)
	}

	return Sizes{n[0], n[1], n[2]}, nil
}

// Close releases the iterator's snapshot. It is not necessary to call Close,
// but doing so allows the snapshot to be reclaimed while the iterator itself
// remains reachable.
func (it *Iterator) Close() {
	it.keys.Destroy()
	it.store = nil
}

func (it *Iterator) check() error {
	if it.store == nil {
		return ErrStale
	}

	if err := it.store.checkOpen(); err != nil {
		return err
	}

	if it.store.generation != it.generation {
		return ErrStale
	}

	return nil
}

// current reads the property at the iterator's position.
func (it *Iterator) current(ctx context.Context) (string, string, []byte, error) {
	k := it.cursor.Item()

	iface, path, ok := decodeKey(k)
	if !ok {
		return "", "", nil, fault.Internal(fault.ErrInvalidArgument, "iterator holds a malformed key")
	}

	v, err := it.store.get(ctx, iface, path)
	if err != nil {
		return "", "", nil, err
	}

	return iface, path, v, nil
}

// keys returns the backend keys of all properties in the store, sorted.
//
// It returns an error matching [fault.ErrNotFound] if there are none.
func (s *Store) keys(ctx context.Context) (*list.List, error) {
	var keys [][]byte

	if err := s.keyspace.Range(
		ctx,
		func(_ context.Context, k, _ []byte) (bool, error) {
			if _, _, ok := decodeKey(k); ok {
				keys = append(keys, k)
			}
			return true, nil
		},
	); err != nil {
		return nil, fault.Internal(err, "unable to enumerate %q namespace", s.opts.namespace)
	}

	if len(keys) == 0 {
		return nil, fault.ErrNotFound
	}

	slices.SortFunc(keys, bytes.Compare)

	l := &list.List{}
	for _, k := range keys {
		if err := l.Append(k); err != nil {
			return nil, fault.Internal(err, "unable to hold property keys")
		}
	}

	return l, nil
}
