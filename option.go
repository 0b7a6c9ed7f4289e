package ews

import (
	"log/slog"
	"time"

	"github.com/rbaliyan/event/v3/transport"
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/retry"
	"github.com/rbaliyan/ews/store"
	"github.com/rbaliyan/ews/wire"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Default configuration values.
const (
	DefaultVersion           = wire.Exchange2013SP1
	DefaultSnapshotRetention = 7 * 24 * time.Hour // 7 days
	MinSnapshotRetention     = time.Hour          // 1 hour minimum
	DefaultShutdownTimeout   = 30 * time.Second   // default graceful shutdown timeout
	MinShutdownTimeout       = 1 * time.Second    // minimum shutdown timeout

	// Default item limits
	DefaultMaxSubjectLength   = 255              // server subject limit
	DefaultMaxBodySize        = 10 * 1024 * 1024 // 10 MB
	DefaultMaxAttachmentSize  = 25 * 1024 * 1024 // 25 MB per attachment
	DefaultMaxAttachmentCount = 20               // max attachments per item
	DefaultMaxRecipientCount  = 500              // max recipients per item

	// Paging limits
	DefaultMaxPageSize = 1000 // max items per FindItem page
	DefaultPageSize    = 100  // default items per FindItem page

	// Concurrency limits
	DefaultMaxConcurrentRequests = 10 // max in-flight requests per service

	// Pull subscriptions
	DefaultSubscriptionTimeout = 30 * time.Minute // server drops idle subscriptions after this
	MaxSubscriptionTimeout     = 24 * time.Hour   // server maximum
)

// options holds service configuration.
type options struct {
	transport Transport
	logger    *slog.Logger

	// Connection settings shared by every bag
	version                   wire.Version
	format                    wire.Format
	timeZone                  *time.Location
	timeZones                 property.TimeZoneResolver
	exchange2007Compatibility bool

	plugins []Plugin

	// Snapshots and attachment archive
	snapshots         store.SnapshotStore
	blobs             store.BlobStore
	snapshotRetention time.Duration

	// Transport retry
	retry       retry.Config
	retryConfig bool

	// Item limits
	maxSubjectLength   int
	maxBodySize        int
	maxAttachmentSize  int64
	maxAttachmentCount int
	maxRecipientCount  int

	// Paging limits
	maxPageSize     int
	defaultPageSize int

	// Concurrency limits
	maxConcurrentRequests int

	// Pull subscription timeout
	subscriptionTimeout time.Duration

	// Shutdown
	shutdownTimeout time.Duration

	// OpenTelemetry
	tracingEnabled bool
	metricsEnabled bool
	serviceName    string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	// Event handling
	eventErrorsFatal      bool                    // If true, event publishing failures cause operation to fail
	eventTransport        transport.Transport     // Event transport (optional, uses noop if nil)
	redisClient           redis.UniversalClient   // Redis client for event transport (optional, uses noop if nil)
	onEventPublishFailure EventPublishFailureFunc // Callback for event publish failures (always set)
}

// EventPublishFailureFunc is called when an event fails to publish.
// The eventName is the name of the event (e.g., "ews.notification"), and err is the publish error.
type EventPublishFailureFunc func(eventName string, err error)

// safeEventPublishFailure calls the event failure callback with panic recovery.
// If the callback panics, the panic is logged and suppressed to prevent cascading failures.
func (o *options) safeEventPublishFailure(eventName string, err error) {
	if o.onEventPublishFailure == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic in event publish failure handler",
				"event", eventName,
				"original_error", err,
				"panic", r,
			)
		}
	}()
	o.onEventPublishFailure(eventName, err)
}

// newOptions creates options with defaults and applies provided options.
func newOptions(opts ...Option) *options {
	o := &options{
		logger:            slog.Default(),
		version:           DefaultVersion,
		format:            wire.FormatXML,
		snapshotRetention: DefaultSnapshotRetention,
		// Item limits defaults
		maxSubjectLength:   DefaultMaxSubjectLength,
		maxBodySize:        DefaultMaxBodySize,
		maxAttachmentSize:  DefaultMaxAttachmentSize,
		maxAttachmentCount: DefaultMaxAttachmentCount,
		maxRecipientCount:  DefaultMaxRecipientCount,
		// Paging defaults
		maxPageSize:     DefaultMaxPageSize,
		defaultPageSize: DefaultPageSize,
		// Concurrency limits defaults
		maxConcurrentRequests: DefaultMaxConcurrentRequests,
		// Shutdown defaults
		shutdownTimeout: DefaultShutdownTimeout,
		// Subscription defaults
		subscriptionTimeout: DefaultSubscriptionTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.defaultPageSize > o.maxPageSize {
		o.defaultPageSize = o.maxPageSize
	}

	if !o.retryConfig {
		o.retry = retry.DefaultConfig()
	}
	// Server verdicts are final; only transient failures are retried.
	if o.retry.IsRetryable == nil {
		o.retry.IsRetryable = IsRetryableError
	}
	if o.retry.OnRetry == nil {
		logger := o.logger
		o.retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
			logger.Warn("retrying request", "attempt", attempt, "backoff", backoff, "error", err)
		}
	}

	// Ensure event failure callback is always set
	if o.onEventPublishFailure == nil {
		o.onEventPublishFailure = func(eventName string, err error) {
			o.logger.Error("failed to publish event", "event", eventName, "error", err)
		}
	}

	return o
}

// settings returns the connection settings handed to every bag.
func (o *options) settings() property.Settings {
	return property.Settings{
		Version:                   o.version,
		TimeZone:                  o.timeZone,
		Exchange2007Compatibility: o.exchange2007Compatibility,
		TimeZones:                 o.timeZones,
	}
}

// Option configures a service.
type Option func(*options)

// --- Core Options ---

// WithTransport sets the transport requests are sent through (required).
func WithTransport(t Transport) Option {
	return func(o *options) {
		if t != nil {
			o.transport = t
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// --- Connection Options ---

// WithVersion sets the protocol version requests target.
// Default is Exchange2013SP1. Unknown versions are ignored.
func WithVersion(v wire.Version) Option {
	return func(o *options) {
		if v.Valid() {
			o.version = v
		}
	}
}

// WithFormat selects the request encoding. Default is XML.
func WithFormat(f wire.Format) Option {
	return func(o *options) {
		if f == wire.FormatXML || f == wire.FormatJSON {
			o.format = f
		}
	}
}

// WithTimeZone sets the connection time zone. Floating date-times are
// scoped by it and values read from the server are returned in it.
// Default is UTC.
func WithTimeZone(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.timeZone = loc
		}
	}
}

// WithTimeZoneResolver sets how protocol time zone names map to locations.
// Default is time.LoadLocation; see package resolver for custom tables.
func WithTimeZoneResolver(r property.TimeZoneResolver) Option {
	return func(o *options) {
		if r != nil {
			o.timeZones = r
		}
	}
}

// WithExchange2007Compatibility enables Exchange2007 compatibility mode.
// On Exchange2007SP1 no time zone elements are written in this mode.
func WithExchange2007Compatibility(enabled bool) Option {
	return func(o *options) {
		o.exchange2007Compatibility = enabled
	}
}

// --- Plugin/Extension Options ---

// WithPlugin registers a plugin with the service.
// Plugins can hook into the object lifecycle.
// Multiple plugins can be registered by calling this option multiple times.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		if p != nil {
			o.plugins = append(o.plugins, p)
		}
	}
}

// WithPlugins registers multiple plugins at once.
func WithPlugins(plugins ...Plugin) Option {
	return func(o *options) {
		for _, p := range plugins {
			if p != nil {
				o.plugins = append(o.plugins, p)
			}
		}
	}
}

// --- Storage Options ---

// WithSnapshotStore sets the store that persists the loaded state of bound
// objects. When set, every successful bind, load, create and update writes
// a snapshot and BindCached can rehydrate objects offline.
func WithSnapshotStore(s store.SnapshotStore) Option {
	return func(o *options) {
		if s != nil {
			o.snapshots = s
		}
	}
}

// WithAttachmentStore sets the blob store used by ArchiveAttachment.
func WithAttachmentStore(s store.BlobStore) Option {
	return func(o *options) {
		if s != nil {
			o.blobs = s
		}
	}
}

// WithSnapshotRetention sets how long snapshots are kept by
// CleanupSnapshots. Default is 7 days. Minimum is 1 hour.
func WithSnapshotRetention(d time.Duration) Option {
	return func(o *options) {
		if d >= MinSnapshotRetention {
			o.snapshotRetention = d
		}
	}
}

// --- Retry Options ---

// WithRetry sets the retry policy around transport calls.
// A nil IsRetryable falls back to IsRetryableError.
// Default is retry.DefaultConfig().
func WithRetry(cfg retry.Config) Option {
	return func(o *options) {
		if cfg.MaxRetries >= 0 {
			o.retry = cfg
			o.retryConfig = true
		}
	}
}

// WithoutRetry disables transport retries.
func WithoutRetry() Option {
	return func(o *options) {
		cfg := retry.DefaultConfig()
		cfg.MaxRetries = 0
		o.retry = cfg
		o.retryConfig = true
	}
}

// --- OTel Options ---

// WithTracing enables or disables OpenTelemetry tracing.
// When enabled, spans are created for all service operations.
// Default is disabled.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracingEnabled = enabled
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// When enabled, metrics are collected for all service operations.
// Default is disabled.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metricsEnabled = enabled
	}
}

// WithOTel enables both OpenTelemetry tracing and metrics.
// This is a convenience function equivalent to calling
// WithTracing(true) and WithMetrics(true).
func WithOTel(enabled bool) Option {
	return func(o *options) {
		o.tracingEnabled = enabled
		o.metricsEnabled = enabled
	}
}

// WithServiceName sets the service name for OpenTelemetry telemetry.
// Default is "ews".
func WithServiceName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.serviceName = name
		}
	}
}

// WithTracerProvider sets a custom OpenTelemetry tracer provider.
// Default uses the global tracer provider from otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets a custom OpenTelemetry meter provider.
// Default uses the global meter provider from otel.GetMeterProvider().
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// --- Item Limit Options ---

// WithMaxBodySize sets the maximum body size in bytes.
// Default is 10 MB.
func WithMaxBodySize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithMaxAttachmentSize sets the maximum size per attachment in bytes.
// Default is 25 MB.
func WithMaxAttachmentSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttachmentSize = n
		}
	}
}

// WithMaxRecipients sets the maximum number of recipients per item,
// counting To, Cc, Bcc and attendees.
// Default is 500.
func WithMaxRecipients(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRecipientCount = n
		}
	}
}

// WithMaxSubjectLength sets the maximum subject length in characters.
// Default is 255.
func WithMaxSubjectLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSubjectLength = n
		}
	}
}

// WithMaxAttachmentCount sets the maximum number of attachments per item.
// Default is 20.
func WithMaxAttachmentCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttachmentCount = n
		}
	}
}

// --- Paging Options ---

// WithMaxPageSize sets the maximum number of items per FindItems page.
// Larger requests are capped.
// Default is 1000.
func WithMaxPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPageSize = n
		}
	}
}

// WithDefaultPageSize sets the page size used when a view has none.
// If this exceeds MaxPageSize, it is capped to MaxPageSize.
// Default is 100.
func WithDefaultPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.defaultPageSize = n
		}
	}
}

// --- Concurrency Options ---

// WithMaxConcurrentRequests sets the maximum number of requests in flight
// at once across the service.
// Default is 10.
func WithMaxConcurrentRequests(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrentRequests = n
		}
	}
}

// WithShutdownTimeout sets the maximum time to wait for in-flight requests
// during graceful shutdown.
// Default is 30 seconds. Minimum is 1 second.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= MinShutdownTimeout {
			o.shutdownTimeout = d
		}
	}
}

// --- Notification Options ---

// WithSubscriptionTimeout sets how long the server keeps a pull
// subscription without a GetEvents call. It is sent in whole minutes.
// Default is 30 minutes. Values outside 1 minute to 24 hours are ignored.
func WithSubscriptionTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= time.Minute && d <= MaxSubscriptionTimeout {
			o.subscriptionTimeout = d
		}
	}
}

// --- Event Options ---

// WithEventErrorsFatal configures whether event publishing failures should
// cause the operation to fail. By default, event failures are logged but
// the operation succeeds.
func WithEventErrorsFatal(fatal bool) Option {
	return func(o *options) {
		o.eventErrorsFatal = fatal
	}
}

// WithEventTransport sets the event transport notifications are published on.
// If not provided, a noop transport is used (events are silently dropped).
//
// Example with Redis:
//
//	transport, _ := redis.New(redisClient)
//	svc, _ := ews.NewService(ews.WithEventTransport(transport))
func WithEventTransport(t transport.Transport) Option {
	return func(o *options) {
		if t != nil {
			o.eventTransport = t
		}
	}
}

// WithRedisClient sets a Redis client for the event transport.
// When provided, events are published to Redis Streams for reliable delivery.
//
// Compatible with *redis.Client, *redis.ClusterClient, and redis.UniversalClient.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(o *options) {
		if client != nil {
			o.redisClient = client
		}
	}
}

// WithEventPublishFailureHandler sets a callback for event publishing failures.
// This callback is invoked whenever an event fails to publish (and eventErrorsFatal is false).
//
// By default, failures are logged using the configured logger.
func WithEventPublishFailureHandler(fn EventPublishFailureFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.onEventPublishFailure = fn
		}
	}
}

// getLimits returns the configured item limits.
func (o *options) getLimits() ItemLimits {
	return ItemLimits{
		MaxSubjectLength:   o.maxSubjectLength,
		MaxBodySize:        o.maxBodySize,
		MaxAttachmentSize:  o.maxAttachmentSize,
		MaxAttachmentCount: o.maxAttachmentCount,
		MaxRecipientCount:  o.maxRecipientCount,
	}
}
