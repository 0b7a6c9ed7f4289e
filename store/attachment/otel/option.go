package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	tracing     bool
	metrics     bool
	backend     string
	extra       []attribute.KeyValue
	redactNames bool
	tp          trace.TracerProvider
	mp          metric.MeterProvider
}

func newOptions(opts ...Option) *options {
	o := &options{
		tracing: true,
		metrics: true,
		tp:      otel.GetTracerProvider(),
		mp:      otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// common returns the attributes put on every span and measurement. They
// are bounded in cardinality; per-blob values go on spans only.
func (o *options) common() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(o.extra)+1)
	if o.backend != "" {
		attrs = append(attrs, attribute.String("archive.backend", o.backend))
	}
	return append(attrs, o.extra...)
}

// Option configures the instrumented store.
type Option func(*options)

// WithTracing turns spans on or off. On by default.
func WithTracing(enabled bool) Option {
	return func(o *options) { o.tracing = enabled }
}

// WithMetrics turns the archive instruments on or off. On by default.
func WithMetrics(enabled bool) Option {
	return func(o *options) { o.metrics = enabled }
}

// WithDisabled turns off both tracing and metrics, leaving a pass-through.
func WithDisabled() Option {
	return func(o *options) {
		o.tracing = false
		o.metrics = false
	}
}

// WithBackend names the wrapped backend, e.g. "s3" or "gcs", in the
// archive.backend attribute.
func WithBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithAttributes adds attributes to every span and measurement. Keep them
// low in cardinality.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(o *options) { o.extra = append(o.extra, attrs...) }
}

// WithRedactedNames keeps attachment file names and blob URIs out of
// spans. Attachment names are user content.
func WithRedactedNames() Option {
	return func(o *options) { o.redactNames = true }
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tp = tp
		}
	}
}

// WithMeterProvider replaces the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.mp = mp
		}
	}
}
