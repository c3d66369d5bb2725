// Package property persists property values keyed by interface name and path
// on top of a flat [kv.Store].
package property

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/internal/errorx"
	"github.com/dogmatiq/propertykit/internal/telemetry"
	"github.com/dogmatiq/propertykit/internal/x/xtelemetry"
	"github.com/dogmatiq/propertykit/kv"
)

var (
	// ErrClosed is returned when an operation is performed on a [Store] that
	// has been closed. It matches [fault.ErrInvalidArgument].
	ErrClosed = fmt.Errorf("%w: property store is closed", fault.ErrInvalidArgument)

	// ErrStale is returned when an [Iterator] is used after its [Store] has
	// been modified. It matches [fault.ErrInvalidArgument].
	ErrStale = fmt.Errorf("%w: iterator invalidated by a modification of the property store", fault.ErrInvalidArgument)
)

// Property is a single property value.
type Property struct {
	Interface string
	Path      string
	Value     []byte
}

// Store is a handle to a durable collection of properties.
//
// A Store must be obtained by calling [Open] and must be closed exactly once.
// It is not safe for concurrent use.
type Store struct {
	keyspace  kv.Keyspace
	opts      options
	telemetry *telemetry.Recorder

	// generation is incremented by every modification, invalidating any
	// outstanding iterators.
	generation uint64
}

// Open opens a property store on top of the given backend.
func Open(ctx context.Context, backend kv.Store, opts ...Option) (*Store, error) {
	o := options{
		namespace: DefaultNamespace,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.namespace == "" {
		return nil, fault.InvalidArgument("namespace must not be empty")
	}

	p := telemetry.Provider{
		TracerProvider: o.tracerProvider,
		MeterProvider:  o.meterProvider,
		LoggerProvider: o.loggerProvider,
	}

	telem := p.Recorder(
		"github.com/dogmatiq/propertykit/property",
		telemetry.String("namespace", o.namespace),
		telemetry.Bool("exclusive", o.exclusive),
		telemetry.String("handle", xtelemetry.HandleID("store")),
	)

	backend = kv.WithTelemetry(backend, o.tracerProvider, o.meterProvider, o.loggerProvider)

	ks, err := backend.Open(ctx, o.namespace)
	if err != nil {
		telem.Error(ctx, "store.open.error", "unable to open backend keyspace", err)
		return nil, fault.Internal(err, "unable to open %q namespace", o.namespace)
	}

	telem.Info(ctx, "store.open.ok", "opened property store")

	return &Store{
		keyspace:  ks,
		opts:      o,
		telemetry: telem,
	}, nil
}

// Close releases the backend resources held by the store.
//
// It returns [ErrClosed] if the store has already been closed.
func (s *Store) Close() error {
	if s.keyspace == nil {
		return ErrClosed
	}

	ks := s.keyspace
	s.keyspace = nil
	s.generation++

	if err := ks.Close(); err != nil {
		s.telemetry.Error(context.Background(), "store.close.error", "unable to close backend keyspace", err)
		return fault.Internal(err, "unable to close %q namespace", s.opts.namespace)
	}

	s.telemetry.Info(context.Background(), "store.close.ok", "closed property store")

	return nil
}

// Namespace returns the name of the backend keyspace that holds the
// properties.
func (s *Store) Namespace() string {
	return s.opts.namespace
}

// Store sets the value of the property at path within the interface named
// iface, replacing any existing value.
//
// An empty value deletes the property.
func (s *Store) Store(ctx context.Context, iface, path string, value []byte) (err error) {
	defer errorx.Wrap(&err, "unable to store %s%s", iface, path)

	if err := s.checkOpen(); err != nil {
		return err
	}

	if err := s.checkWrite(iface, path, value); err != nil {
		return err
	}

	return s.set(ctx, iface, path, value)
}

// Contains returns true if the property at path within the interface named
// iface holds exactly value.
//
// It returns an error matching [fault.ErrNotFound] if the property is not
// present, which is distinct from a present property with a different value.
func (s *Store) Contains(ctx context.Context, iface, path string, value []byte) (bool, error) {
	v, err := s.Load(ctx, iface, path)
	if err != nil {
		return false, err
	}

	return bytes.Equal(v, value), nil
}

// Load returns the value of the property at path within the interface named
// iface.
//
// It returns an error matching [fault.ErrNotFound] if the property is not
// present. The returned slice is owned by the caller.
func (s *Store) Load(ctx context.Context, iface, path string) ([]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if err := checkKey(iface, path); err != nil {
		return nil, err
	}

	return s.get(ctx, iface, path)
}

// Size returns the length of the value of the property at path within the
// interface named iface, for callers that wish to size a buffer in advance.
//
// It returns an error matching [fault.ErrNotFound] if the property is not
// present.
func (s *Store) Size(ctx context.Context, iface, path string) (int, error) {
	v, err := s.Load(ctx, iface, path)
	return len(v), err
}

// LoadInto copies the value of the property at path within the interface
// named iface into buf and returns the number of bytes written.
//
// If buf is nil nothing is written, and the value's length is returned. If buf
// is too short to hold the value a [*fault.TooSmallError] is returned and the
// content of buf is unspecified.
func (s *Store) LoadInto(ctx context.Context, iface, path string, buf []byte) (int, error) {
	v, err := s.Load(ctx, iface, path)
	if err != nil {
		return 0, err
	}

	return fill("value", buf, v)
}

// Delete removes the property at path within the interface named iface.
//
// It is not an error to delete a property that is not present.
func (s *Store) Delete(ctx context.Context, iface, path string) (err error) {
	defer errorx.Wrap(&err, "unable to delete %s%s", iface, path)

	if err := s.checkOpen(); err != nil {
		return err
	}

	if err := checkKey(iface, path); err != nil {
		return err
	}

	return s.set(ctx, iface, path, nil)
}

// Clear removes every property from the store.
//
// Unrelated keys in a shared namespace are left untouched.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	ctx, span := s.telemetry.StartSpan(ctx, "store.clear")
	defer span.End()

	s.generation++

	if s.opts.exclusive {
		if err := s.keyspace.EraseAll(ctx); err != nil {
			s.telemetry.Error(ctx, "store.clear.error", "unable to erase namespace", err)
			return fault.Internal(err, "unable to erase %q namespace", s.opts.namespace)
		}

		s.telemetry.Info(ctx, "store.clear.ok", "erased namespace")
		return nil
	}

	keys, err := s.keys(ctx)
	if fault.IsNotFound(err) {
		s.telemetry.Info(ctx, "store.clear.ok", "no properties to delete")
		return nil
	}
	if err != nil {
		s.telemetry.Error(ctx, "store.clear.error", "unable to enumerate properties", err)
		return err
	}
	defer keys.Destroy()

	for k := range keys.All() {
		if err := s.keyspace.Set(ctx, k, nil); err != nil {
			s.telemetry.Error(ctx, "store.clear.error", "unable to delete property", err)
			return fault.Internal(err, "unable to clear %q namespace", s.opts.namespace)
		}
	}

	span.SetAttributes(telemetry.Int("properties_deleted", keys.Len()))
	s.telemetry.Info(ctx, "store.clear.ok", "deleted all properties")

	return nil
}

// Range invokes fn for each property in the store, in an undefined order.
//
// If fn returns a non-nil error ranging stops and the error is returned. If fn
// returns false ranging stops without error.
func (s *Store) Range(
	ctx context.Context,
	fn func(ctx context.Context, p Property) (bool, error),
) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	var failure error

	if err := s.keyspace.Range(
		ctx,
		func(ctx context.Context, k, v []byte) (bool, error) {
			iface, path, ok := decodeKey(k)
			if !ok {
				return true, nil
			}

			ok, failure = fn(ctx, Property{iface, path, v})
			return ok && failure == nil, nil
		},
	); err != nil {
		return fault.Internal(err, "unable to range over %q namespace", s.opts.namespace)
	}

	return failure
}

func (s *Store) checkOpen() error {
	if s.keyspace == nil {
		return ErrClosed
	}
	return nil
}

// checkWrite returns an error if value may not be written to the given
// property.
func (s *Store) checkWrite(iface, path string, value []byte) error {
	if err := checkKey(iface, path); err != nil {
		return err
	}

	if s.opts.registry == nil {
		return nil
	}

	i, ok := s.opts.registry.Lookup(iface)
	if !ok {
		return fault.InvalidArgument("unknown interface %q", iface)
	}

	if !i.IsProperties() {
		return fault.InvalidArgument("interface %q is a %s interface", iface, i.Type)
	}

	m, ok, err := i.FindMapping(s.opts.validator, path)
	if err != nil {
		return err
	}

	if !ok {
		return fault.InvalidArgument("path %q does not match any mapping of interface %q", path, iface)
	}

	if len(value) == 0 && !m.AllowUnset {
		return fault.InvalidArgument("mapping %q of interface %q does not allow unset", m.Endpoint, iface)
	}

	return nil
}

func checkKey(iface, path string) error {
	if iface == "" {
		return fault.InvalidArgument("interface name must not be empty")
	}

	if path == "" {
		return fault.InvalidArgument("path must not be empty")
	}

	return nil
}

func (s *Store) get(ctx context.Context, iface, path string) ([]byte, error) {
	v, err := s.keyspace.Get(ctx, encodeKey(iface, path))
	if err != nil {
		return nil, fault.Internal(err, "unable to read %s%s", iface, path)
	}

	if len(v) == 0 {
		return nil, fmt.Errorf("%s%s: %w", iface, path, fault.ErrNotFound)
	}

	return v, nil
}

func (s *Store) set(ctx context.Context, iface, path string, value []byte) error {
	s.generation++

	if err := s.keyspace.Set(ctx, encodeKey(iface, path), value); err != nil {
		return fault.Internal(err, "unable to write to %q namespace", s.opts.namespace)
	}

	return nil
}

// fill copies v into buf, negotiating the buffer size as described by
// [Store.LoadInto].
func fill(field string, buf, v []byte) (int, error) {
	if buf == nil {
		return len(v), nil
	}

	if len(buf) < len(v) {
		return 0, &fault.TooSmallError{
			Field:    field,
			Required: len(v),
			Capacity: len(buf),
		}
	}

	return copy(buf, v), nil
}
