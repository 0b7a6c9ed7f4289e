// Package otel provides OpenTelemetry instrumentation for blob stores.
package otel

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rbaliyan/ews/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rbaliyan/ews/store/attachment/otel"

// opMetrics holds the instruments of one operation.
type opMetrics struct {
	latency metric.Float64Histogram
	count   metric.Int64Counter
	errors  metric.Int64Counter
	bytes   metric.Int64Counter // nil for delete
}

func newOpMetrics(meter metric.Meter, op string, withBytes bool) (*opMetrics, error) {
	prefix := "ews.archive." + op
	m := &opMetrics{}
	var err error
	if m.latency, err = meter.Float64Histogram(prefix+".duration",
		metric.WithDescription("Duration of archive "+op+" operations"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.count, err = meter.Int64Counter(prefix+".count",
		metric.WithDescription("Number of archive "+op+" operations"),
	); err != nil {
		return nil, err
	}
	if m.errors, err = meter.Int64Counter(prefix+".errors",
		metric.WithDescription("Number of archive "+op+" errors"),
	); err != nil {
		return nil, err
	}
	if withBytes {
		if m.bytes, err = meter.Int64Counter(prefix+".bytes",
			metric.WithDescription("Bytes transferred by archive "+op),
			metric.WithUnit("By"),
		); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *opMetrics) record(ctx context.Context, start time.Time, err error, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	set := metric.WithAttributes(attrs...)
	m.latency.Record(ctx, time.Since(start).Seconds(), set)
	m.count.Add(ctx, 1, set)
	if err != nil {
		m.errors.Add(ctx, 1, set)
	}
}

func (m *opMetrics) addBytes(ctx context.Context, n int64, attrs []attribute.KeyValue) {
	if m == nil || m.bytes == nil {
		return
	}
	m.bytes.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Store wraps a BlobStore with tracing and metrics. Measurements carry
// only the common attributes; spans also carry the attachment name and
// URI unless names are redacted.
type Store struct {
	backend store.BlobStore
	opts    *options
	tracer  trace.Tracer
	common  []attribute.KeyValue

	put, open, delete *opMetrics
}

var _ store.BlobStore = (*Store)(nil)

// New wraps backend.
func New(backend store.BlobStore, opts ...Option) (*Store, error) {
	o := newOptions(opts...)
	s := &Store{backend: backend, opts: o, common: o.common()}

	if o.tracing {
		s.tracer = o.tp.Tracer(instrumentationName)
	}
	if o.metrics {
		meter := o.mp.Meter(instrumentationName)
		var err error
		if s.put, err = newOpMetrics(meter, "put", true); err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		if s.open, err = newOpMetrics(meter, "open", true); err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		if s.delete, err = newOpMetrics(meter, "delete", false); err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}
	return s, nil
}

// spanAttrs returns the common attributes plus the given per-blob ones,
// dropping the latter when names are redacted.
func (s *Store) spanAttrs(perBlob ...attribute.KeyValue) []attribute.KeyValue {
	attrs := append([]attribute.KeyValue(nil), s.common...)
	if s.opts.redactNames {
		return attrs
	}
	return append(attrs, perBlob...)
}

// startSpan returns a nil span when tracing is disabled.
func (s *Store) startSpan(ctx context.Context, name string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, nil
	}
	return s.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func endSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (s *Store) Put(ctx context.Context, info store.BlobInfo, content io.Reader) (string, error) {
	measured := append(append([]attribute.KeyValue(nil), s.common...),
		attribute.String("attachment.content_type", info.ContentType))
	ctx, span := s.startSpan(ctx, "archive.put", append(s.spanAttrs(attribute.String("attachment.name", info.Name)),
		attribute.String("attachment.content_type", info.ContentType)))
	start := time.Now()

	counter := &countingReader{reader: content}
	uri, err := s.backend.Put(ctx, info, counter)

	s.put.record(ctx, start, err, measured)
	s.put.addBytes(ctx, counter.bytes, measured)
	done := []attribute.KeyValue{attribute.Int64("attachment.bytes", counter.bytes)}
	if !s.opts.redactNames {
		done = append(done, attribute.String("attachment.uri", uri))
	}
	endSpan(span, err, done...)
	return uri, err
}

// Open returns a reader whose span ends when it is closed.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	ctx, span := s.startSpan(ctx, "archive.open", s.spanAttrs(attribute.String("attachment.uri", uri)))
	start := time.Now()

	reader, err := s.backend.Open(ctx, uri)
	s.open.record(ctx, start, err, s.common)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	return &instrumentedReader{
		reader: reader,
		span:   span,
		store:  s,
		ctx:    ctx,
	}, nil
}

func (s *Store) Delete(ctx context.Context, uri string) error {
	ctx, span := s.startSpan(ctx, "archive.delete", s.spanAttrs(attribute.String("attachment.uri", uri)))
	start := time.Now()

	err := s.backend.Delete(ctx, uri)

	s.delete.record(ctx, start, err, s.common)
	endSpan(span, err)
	return err
}

// countingReader wraps an io.Reader and counts bytes read.
type countingReader struct {
	reader io.Reader
	bytes  int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytes += int64(n)
	return n, err
}

// instrumentedReader records bytes read and ends the span on Close.
type instrumentedReader struct {
	reader io.ReadCloser
	span   trace.Span
	store  *Store
	ctx    context.Context
	bytes  int64
	closed bool
}

func (r *instrumentedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytes += int64(n)
	return n, err
}

func (r *instrumentedReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.reader.Close()
	r.store.open.addBytes(r.ctx, r.bytes, r.store.common)
	endSpan(r.span, err, attribute.Int64("attachment.bytes", r.bytes))
	return err
}
