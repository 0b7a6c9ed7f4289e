package ews

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/rbaliyan/ews"
)

// opMetrics are the instruments of one operation.
type opMetrics struct {
	latency metric.Float64Histogram
	count   metric.Int64Counter
	errors  metric.Int64Counter
}

func (m *opMetrics) record(ctx context.Context, duration time.Duration, err error, attrs ...attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)
	m.latency.Record(ctx, duration.Seconds(), opt)
	m.count.Add(ctx, 1, opt)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
}

// otelInstrumentation holds OpenTelemetry instrumentation for the service.
type otelInstrumentation struct {
	enabled bool

	// Tracing
	tracingEnabled bool
	tracer         trace.Tracer

	// Metrics
	metricsEnabled bool
	serviceName    string

	// Object operations
	bind   opMetrics
	find   opMetrics
	save   opMetrics
	update opMetrics
	delete opMetrics

	// Notifications
	subscribe opMetrics
	getEvents opMetrics

	// Transport round trips, attributed by operation
	request opMetrics
}

// newOtelInstrumentation creates new OTel instrumentation from options.
func newOtelInstrumentation(opts *options) (*otelInstrumentation, error) {
	o := &otelInstrumentation{
		enabled:        opts.tracingEnabled || opts.metricsEnabled,
		tracingEnabled: opts.tracingEnabled,
		metricsEnabled: opts.metricsEnabled,
		serviceName:    opts.serviceName,
	}

	if !o.enabled {
		return o, nil
	}

	if o.serviceName == "" {
		o.serviceName = "ews"
	}

	// Initialize tracer
	if opts.tracingEnabled {
		tp := opts.tracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		o.tracer = tp.Tracer(instrumentationName)
	}

	// Initialize metrics
	if opts.metricsEnabled {
		mp := opts.meterProvider
		if mp == nil {
			mp = otel.GetMeterProvider()
		}
		if err := o.initMetrics(mp); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// initMetrics initializes all metric instruments.
func (o *otelInstrumentation) initMetrics(mp metric.MeterProvider) error {
	meter := mp.Meter(instrumentationName)

	for _, op := range []struct {
		m    *opMetrics
		name string
		desc string
	}{
		{&o.bind, "bind", "bind and load"},
		{&o.find, "find", "find"},
		{&o.save, "save", "create"},
		{&o.update, "update", "update"},
		{&o.delete, "delete", "delete"},
		{&o.subscribe, "subscribe", "subscribe"},
		{&o.getEvents, "getevents", "get events"},
		{&o.request, "request", "transport"},
	} {
		if err := o.initOp(meter, op.m, op.name, op.desc); err != nil {
			return err
		}
	}
	return nil
}

func (o *otelInstrumentation) initOp(meter metric.Meter, m *opMetrics, name, desc string) error {
	prefix := o.serviceName + "." + name
	var err error

	m.latency, err = meter.Float64Histogram(
		prefix+".duration",
		metric.WithDescription("Duration of "+desc+" operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.count, err = meter.Int64Counter(
		prefix+".count",
		metric.WithDescription("Number of "+desc+" operations"),
	)
	if err != nil {
		return err
	}

	m.errors, err = meter.Int64Counter(
		prefix+".errors",
		metric.WithDescription("Number of "+desc+" errors"),
	)
	return err
}

// startSpan starts a new span if tracing is enabled.
// The returned function ends the span, recording err when non-nil.
func (o *otelInstrumentation) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if !o.tracingEnabled || o.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := o.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// recordBind records bind and load metrics.
func (o *otelInstrumentation) recordBind(ctx context.Context, duration time.Duration, kind string, err error) {
	if !o.metricsEnabled {
		return
	}
	o.bind.record(ctx, duration, err, attribute.String("kind", kind))
}

// recordFind records find metrics.
func (o *otelInstrumentation) recordFind(ctx context.Context, duration time.Duration, folder string, resultCount int, err error) {
	if !o.metricsEnabled {
		return
	}
	o.find.record(ctx, duration, err,
		attribute.String("folder", folder),
		attribute.Int("result_count", resultCount),
	)
}

// recordSave records create metrics.
func (o *otelInstrumentation) recordSave(ctx context.Context, duration time.Duration, kind string, err error) {
	if !o.metricsEnabled {
		return
	}
	o.save.record(ctx, duration, err, attribute.String("kind", kind))
}

// recordUpdate records update metrics.
func (o *otelInstrumentation) recordUpdate(ctx context.Context, duration time.Duration, kind string, changes int, err error) {
	if !o.metricsEnabled {
		return
	}
	o.update.record(ctx, duration, err,
		attribute.String("kind", kind),
		attribute.Int("changes", changes),
	)
}

// recordDelete records delete metrics.
func (o *otelInstrumentation) recordDelete(ctx context.Context, duration time.Duration, mode DeleteMode, err error) {
	if !o.metricsEnabled {
		return
	}
	o.delete.record(ctx, duration, err, attribute.String("mode", string(mode)))
}

// recordSubscribe records subscribe metrics.
func (o *otelInstrumentation) recordSubscribe(ctx context.Context, duration time.Duration, folderCount int, err error) {
	if !o.metricsEnabled {
		return
	}
	o.subscribe.record(ctx, duration, err, attribute.Int("folder_count", folderCount))
}

// recordGetEvents records get events metrics.
func (o *otelInstrumentation) recordGetEvents(ctx context.Context, duration time.Duration, eventCount int, err error) {
	if !o.metricsEnabled {
		return
	}
	o.getEvents.record(ctx, duration, err, attribute.Int("event_count", eventCount))
}

// recordRequest records one transport round trip including retries.
func (o *otelInstrumentation) recordRequest(ctx context.Context, duration time.Duration, operation string, err error) {
	if !o.metricsEnabled {
		return
	}
	o.request.record(ctx, duration, err, attribute.String("operation", operation))
}
