package telemetry

import (
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/log"
	nooplog "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Provider provides Recorder instances scoped to particular subsystems.
//
// Any nil provider is replaced by its no-op equivalent.
type Provider struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	LoggerProvider log.LoggerProvider
}

// Recorder records traces, metrics and logs for a particular subsystem.
type Recorder struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger log.Logger

	errorCount              Instrument[int64]
	operationCount          Instrument[int64]
	operationsInFlightCount Instrument[int64]
}

// Recorder returns a new Recorder instance.
//
// pkg is the path to the Go package that is performing the instrumentation. If
// it is an internal package, use the package path of the public parent package
// instead.
func (p *Provider) Recorder(pkg string, attrs ...Attr) *Recorder {
	tp, mp, lp := p.TracerProvider, p.MeterProvider, p.LoggerProvider
	if tp == nil {
		tp = nooptrace.NewTracerProvider()
	}
	if mp == nil {
		mp = noopmetric.NewMeterProvider()
	}
	if lp == nil {
		lp = nooplog.NewLoggerProvider()
	}

	v := moduleVersion()
	kvs := asAttrKeyValues(attrs)

	r := &Recorder{
		tracer: tp.Tracer(
			pkg,
			trace.WithInstrumentationVersion(v),
			trace.WithInstrumentationAttributes(kvs...),
		),
		meter: mp.Meter(
			pkg,
			metric.WithInstrumentationVersion(v),
			metric.WithInstrumentationAttributes(kvs...),
		),
		logger: lp.Logger(
			pkg,
			log.WithInstrumentationVersion(v),
			log.WithInstrumentationAttributes(kvs...),
		),
	}

	r.errorCount = r.Counter("errors", "{error}", "The number of errors that have occurred.")
	r.operationCount = r.Counter("operations", "{operation}", "The number of operations that have been performed.")
	r.operationsInFlightCount = r.UpDownCounter("operations.in_flight", "{operation}", "The number of operations that are currently in progress.")

	return r
}

// moduleVersion returns the version of this module as recorded in the binary's
// build information, or "unknown".
var moduleVersion = sync.OnceValue(func() string {
	const modulePath = "github.com/dogmatiq/propertykit"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	if info.Main.Path == modulePath && info.Main.Version != "" {
		return info.Main.Version
	}

	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}

	return "unknown"
})
