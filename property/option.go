package property

import (
	"github.com/dogmatiq/propertykit/endpoint"
	"github.com/dogmatiq/propertykit/schema"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultNamespace is the name of the keyspace used when no namespace is
// specified.
const DefaultNamespace = "astarte"

// Option is a functional option that changes the behavior of [Open].
type Option func(*options)

type options struct {
	namespace string
	exclusive bool
	registry  *schema.Registry
	validator *endpoint.Validator

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	loggerProvider log.LoggerProvider
}

// WithNamespace is an [Option] that sets the name of the backend keyspace in
// which properties are stored.
func WithNamespace(name string) Option {
	return func(o *options) {
		o.namespace = name
	}
}

// WithExclusiveNamespace is an [Option] that declares that the keyspace holds
// nothing but properties, allowing [Store.Clear] to erase the whole keyspace
// in a single backend operation.
func WithExclusiveNamespace() Option {
	return func(o *options) {
		o.exclusive = true
	}
}

// WithSchema is an [Option] that restricts writes to property interfaces known
// to r, at paths that match one of the interface's mappings.
//
// If v is nil the default endpoint grammar is used.
func WithSchema(r *schema.Registry, v *endpoint.Validator) Option {
	return func(o *options) {
		o.registry = r
		o.validator = v
	}
}

// WithTelemetry is an [Option] that records traces, metrics and logs for the
// store and its backend keyspace.
func WithTelemetry(
	t trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) Option {
	return func(o *options) {
		o.tracerProvider = t
		o.meterProvider = m
		o.loggerProvider = l
	}
}
