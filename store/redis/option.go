package redis

import (
	"log/slog"
	"time"
)

// Default configuration values.
const (
	DefaultPrefix  = "ews:snapshot"
	DefaultTimeout = 5 * time.Second
)

// options holds Redis store configuration.
type options struct {
	prefix  string
	timeout time.Duration
	ttl     time.Duration
	logger  *slog.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{
		prefix:  DefaultPrefix,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a Redis store.
type Option func(*options)

// WithPrefix sets the key prefix. Snapshot hashes live under
// "<prefix>:<key>" and the saved_at index under "<prefix>:saved".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithTimeout sets the operation timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTTL sets an expiry on every saved snapshot hash.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
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
