package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument records a measurement of type T.
type Instrument[T int64 | float64] func(ctx context.Context, v T, attrs ...Attr)

// Direction is an attribute that describes whether a measurement relates to
// data flowing in or out of the instrumented component.
var (
	// ReadDirection indicates data read from the underlying storage.
	ReadDirection = String("io.direction", "read")

	// WriteDirection indicates data written to the underlying storage.
	WriteDirection = String("io.direction", "write")
)

// Counter returns an instrument that records monotonically increasing values.
func (r *Recorder) Counter(name, unit, desc string) Instrument[int64] {
	c, err := r.meter.Int64Counter(
		name,
		metric.WithUnit(unit),
		metric.WithDescription(desc),
	)
	if err != nil {
		panic(err)
	}

	return func(ctx context.Context, v int64, attrs ...Attr) {
		c.Add(ctx, v, measurementOptions(attrs)...)
	}
}

// UpDownCounter returns an instrument that records values that may increase
// or decrease.
func (r *Recorder) UpDownCounter(name, unit, desc string) Instrument[int64] {
	c, err := r.meter.Int64UpDownCounter(
		name,
		metric.WithUnit(unit),
		metric.WithDescription(desc),
	)
	if err != nil {
		panic(err)
	}

	return func(ctx context.Context, v int64, attrs ...Attr) {
		c.Add(ctx, v, measurementOptions(attrs)...)
	}
}

// Histogram returns an instrument that records a distribution of values.
func (r *Recorder) Histogram(name, unit, desc string) Instrument[int64] {
	h, err := r.meter.Int64Histogram(
		name,
		metric.WithUnit(unit),
		metric.WithDescription(desc),
	)
	if err != nil {
		panic(err)
	}

	return func(ctx context.Context, v int64, attrs ...Attr) {
		h.Record(ctx, v, metric.WithAttributes(asAttrKeyValues(attrs)...))
	}
}

func measurementOptions(attrs []Attr) []metric.AddOption {
	if len(attrs) == 0 {
		return nil
	}

	return []metric.AddOption{
		metric.WithAttributeSet(attribute.NewSet(asAttrKeyValues(attrs)...)),
	}
}
