package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Span is an in-progress operation.
type Span struct {
	span     trace.Span
	recorder *Recorder
	ctx      context.Context
}

// StartSpan starts a new span and records the start of an operation.
//
// The caller must call [Span.End] when the operation completes.
func (r *Recorder) StartSpan(
	ctx context.Context,
	name string,
	attrs ...Attr,
) (context.Context, *Span) {
	ctx, span := r.tracer.Start(
		ctx,
		name,
		trace.WithAttributes(asAttrKeyValues(attrs)...),
	)

	r.operationCount(ctx, 1)
	r.operationsInFlightCount(ctx, 1)

	return ctx, &Span{span, r, ctx}
}

// SetAttributes adds attributes to the span.
func (s *Span) SetAttributes(attrs ...Attr) {
	s.span.SetAttributes(asAttrKeyValues(attrs)...)
}

// End completes the span.
func (s *Span) End() {
	s.recorder.operationsInFlightCount(s.ctx, -1)
	s.span.End()
}
