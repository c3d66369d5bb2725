package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// Info records a successful outcome, such as "store.open.ok", as a log record
// and as an event on the span in ctx.
func (r *Recorder) Info(
	ctx context.Context,
	event, message string,
	body ...Attr,
) {
	r.log(ctx, log.SeverityInfo, event, message, nil, body)
}

// Error records a failed outcome, such as "store.clear.error", in the same way
// as [Recorder.Info]. The span in ctx is marked as failed and the "errors"
// counter is incremented.
func (r *Recorder) Error(
	ctx context.Context,
	event, message string,
	err error,
	body ...Attr,
) {
	r.log(ctx, log.SeverityError, event, message, err, body)
	r.errorCount(ctx, 1)

	span := trace.SpanFromContext(ctx)
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}

// log emits the record only when the logger is enabled for severity. Keys and
// values in body are truncated by [Binary].
func (r *Recorder) log(
	ctx context.Context,
	severity log.Severity,
	event, message string,
	err error,
	body []Attr,
) {
	if !r.logger.Enabled(
		ctx,
		log.EnabledParameters{
			Severity: severity,
		},
	) {
		return
	}

	span := trace.SpanFromContext(ctx)
	span.AddEvent(
		event,
		trace.WithAttributes(attribute.String("message", message)),
		trace.WithAttributes(asAttrKeyValues(body)...),
	)

	var rec log.Record
	rec.SetEventName(event)
	rec.SetSeverity(severity)
	rec.AddAttributes(log.String("message", message))

	if err != nil {
		rec.AddAttributes(log.String("error", err.Error()))
	}

	if len(body) != 0 {
		kvs := asLogKeyValues(body)
		rec.SetBody(log.MapValue(kvs...))
	}

	r.logger.Emit(ctx, rec)
}
