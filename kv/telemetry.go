package kv

import (
	"context"

	"github.com/dogmatiq/propertykit/internal/telemetry"
	"github.com/dogmatiq/propertykit/internal/x/xtelemetry"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithTelemetry returns a [Store] that adds telemetry to s.
func WithTelemetry(
	s Store,
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) Store {
	return &instrumentedStore{
		Next: s,
		Telemetry: telemetry.Provider{
			TracerProvider: p,
			MeterProvider:  m,
			LoggerProvider: l,
		},
	}
}

// instrumentedStore is a decorator that adds instrumentation to a [Store].
type instrumentedStore struct {
	Next      Store
	Telemetry telemetry.Provider
}

// Open returns the keyspace with the given name.
func (s *instrumentedStore) Open(ctx context.Context, name string) (Keyspace, error) {
	telem := s.Telemetry.Recorder(
		"github.com/dogmatiq/propertykit/kv",
		telemetry.Type("kv.store", s.Next),
		telemetry.String("keyspace.name", name),
		telemetry.String("keyspace.handle", xtelemetry.HandleID("keyspace")),
	)

	ks := &instrumentedKeyspace{
		Telemetry:     telem,
		OpenKeyspaces: telem.UpDownCounter("open_keyspaces", "{keyspace}", "The number of keyspaces that are currently open."),
		Erasures:      telem.Counter("erasures", "{operation}", "The number of times a keyspace has been erased."),
		Deletions:     telem.Counter("deletions", "{operation}", "The number of keys that have been deleted by setting an empty value."),
		Misses:        telem.Counter("misses", "{operation}", "The number of lookups of keys that are not present."),
		IO:            telem.Counter("io", "By", "The cumulative size of the keys and values that have been operated upon."),
		KeySize:       telem.Histogram("key.size", "By", "The sizes of the keys that have been operated upon."),
		ValueSize:     telem.Histogram("value.size", "By", "The sizes of the non-empty values that have been operated upon."),
	}

	ctx, span := telem.StartSpan(ctx, "keyspace.open")
	defer span.End()

	next, err := s.Next.Open(ctx, name)
	if err != nil {
		telem.Error(ctx, "keyspace.open.error", "unable to open keyspace", err)
		return nil, err
	}

	ks.Next = next
	ks.OpenKeyspaces(ctx, 1)
	telem.Info(ctx, "keyspace.open.ok", "opened keyspace")

	return ks, nil
}

type instrumentedKeyspace struct {
	Next      Keyspace
	Telemetry *telemetry.Recorder

	OpenKeyspaces telemetry.Instrument[int64]
	Erasures      telemetry.Instrument[int64]
	Deletions     telemetry.Instrument[int64]
	Misses        telemetry.Instrument[int64]
	IO            telemetry.Instrument[int64]
	KeySize       telemetry.Instrument[int64]
	ValueSize     telemetry.Instrument[int64]
}

// observe records the sizes of a key and, if non-empty, its value.
func (ks *instrumentedKeyspace) observe(ctx context.Context, dir telemetry.Attr, k, v []byte) {
	ks.IO(ctx, int64(len(k)+len(v)), dir)
	ks.KeySize(ctx, int64(len(k)), dir)

	if len(v) != 0 {
		ks.ValueSize(ctx, int64(len(v)), dir)
	}
}

// presence records the outcome of a lookup of a key.
func (ks *instrumentedKeyspace) presence(ctx context.Context, span *telemetry.Span, event string, ok bool) {
	span.SetAttributes(telemetry.Bool("key_present", ok))

	if ok {
		ks.Telemetry.Info(ctx, event, "key is present in keyspace")
		return
	}

	ks.Misses(ctx, 1)
	ks.Telemetry.Info(ctx, event, "key is not present in keyspace")
}

func (ks *instrumentedKeyspace) Name() string {
	return ks.Next.Name()
}

func (ks *instrumentedKeyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	ctx, span := ks.Telemetry.StartSpan(
		ctx,
		"keyspace.get",
		telemetry.Binary("key", k),
		telemetry.Int("key_size", len(k)),
	)
	defer span.End()

	v, err := ks.Next.Get(ctx, k)
	if err != nil {
		ks.Telemetry.Error(ctx, "keyspace.get.error", "unable to fetch value associated with key", err)
		return nil, err
	}

	ks.observe(ctx, telemetry.ReadDirection, k, v)

	if len(v) != 0 {
		span.SetAttributes(
			telemetry.Binary("value", v),
			telemetry.Int("value_size", len(v)),
		)
	}

	ks.presence(ctx, span, "keyspace.get.ok", len(v) != 0)

	return v, nil
}

func (ks *instrumentedKeyspace) Has(ctx context.Context, k []byte) (bool, error) {
	ctx, span := ks.Telemetry.StartSpan(
		ctx,
		"keyspace.has",
		telemetry.Binary("key", k),
		telemetry.Int("key_size", len(k)),
	)
	defer span.End()

	ok, err := ks.Next.Has(ctx, k)
	if err != nil {
		ks.Telemetry.Error(ctx, "keyspace.has.error", "unable to check presence of key in keyspace", err)
		return false, err
	}

	ks.observe(ctx, telemetry.ReadDirection, k, nil)
	ks.presence(ctx, span, "keyspace.has.ok", ok)

	return ok, nil
}

func (ks *instrumentedKeyspace) Set(ctx context.Context, k, v []byte) error {
	if len(v) == 0 {
		return ks.delete(ctx, k)
	}

	ctx, span := ks.Telemetry.StartSpan(
		ctx,
		"keyspace.set",
		telemetry.Binary("key", k),
		telemetry.Int("key_size", len(k)),
		telemetry.Binary("value", v),
		telemetry.Int("value_size", len(v)),
	)
	defer span.End()

	if err := ks.Next.Set(ctx, k, v); err != nil {
		ks.Telemetry.Error(ctx, "keyspace.set.error", "unable to set key/value pair", err)
		return err
	}

	ks.observe(ctx, telemetry.WriteDirection, k, v)
	ks.Telemetry.Info(ctx, "keyspace.set.ok", "set key/value pair")

	return nil
}

func (ks *instrumentedKeyspace) delete(ctx context.Context, k []byte) error {
	ctx, span := ks.Telemetry.StartSpan(
		ctx,
		"keyspace.delete",
		telemetry.Binary("key", k),
		telemetry.Int("key_size", len(k)),
	)
	defer span.End()

	if err := ks.Next.Set(ctx, k, nil); err != nil {
		ks.Telemetry.Error(ctx, "keyspace.delete.error", "unable to delete key/value pair", err)
		return err
	}

	ks.observe(ctx, telemetry.WriteDirection, k, nil)
	ks.Deletions(ctx, 1)
	ks.Telemetry.Info(ctx, "keyspace.delete.ok", "deleted key/value pair")

	return nil
}

func (ks *instrumentedKeyspace) Range(ctx context.Context, fn RangeFunc) error {
	ctx, span := ks.Telemetry.StartSpan(ctx, "keyspace.range")
	defer span.End()

	var (
		pairs   int
		size    int
		stopped bool
	)

	err := ks.Next.Range(
		ctx,
		func(ctx context.Context, k, v []byte) (bool, error) {
			pairs++
			size += len(k) + len(v)
			ks.observe(ctx, telemetry.ReadDirection, k, v)

			ok, err := fn(ctx, k, v)
			stopped = !ok && err == nil
			return ok, err
		},
	)

	span.SetAttributes(
		telemetry.Int("pairs_read", pairs),
		telemetry.Int("bytes_read", size),
		telemetry.Bool("reached_end", !stopped && err == nil),
	)

	switch {
	case err != nil:
		ks.Telemetry.Error(ctx, "keyspace.range.error", "unable to range over key/value pairs", err)
		return err
	case stopped:
		ks.Telemetry.Info(ctx, "keyspace.range.break", "range stopped before visiting all key/value pairs")
	default:
		ks.Telemetry.Info(ctx, "keyspace.range.end", "range visited all key/value pairs")
	}

	return nil
}

func (ks *instrumentedKeyspace) EraseAll(ctx context.Context) error {
	ctx, span := ks.Telemetry.StartSpan(ctx, "keyspace.erase-all")
	defer span.End()

	if err := ks.Next.EraseAll(ctx); err != nil {
		ks.Telemetry.Error(ctx, "keyspace.erase-all.error", "unable to erase keyspace", err)
		return err
	}

	ks.Erasures(ctx, 1)
	ks.Telemetry.Info(ctx, "keyspace.erase-all.ok", "erased all key/value pairs")

	return nil
}

// Close closes the underlying keyspace. Closing an already-closed keyspace is
// a no-op, so Close may be deferred unconditionally.
func (ks *instrumentedKeyspace) Close() error {
	if ks.Next == nil {
		return nil
	}

	next := ks.Next
	ks.Next = nil

	ctx, span := ks.Telemetry.StartSpan(context.Background(), "keyspace.close")
	defer span.End()
	defer ks.OpenKeyspaces(ctx, -1)

	if err := next.Close(); err != nil {
		ks.Telemetry.Error(ctx, "keyspace.close.error", "unable to close keyspace cleanly", err)
		return err
	}

	ks.Telemetry.Info(ctx, "keyspace.close.ok", "keyspace closed")

	return nil
}
