package cached

import (
	"log/slog"
	"os"
	"time"
)

// Default configuration values.
const (
	DefaultMaxSize = 1 << 30
	DefaultTTL     = 24 * time.Hour
)

// options holds cached store configuration.
type options struct {
	cacheDir string
	maxSize  int64
	ttl      time.Duration
	logger   *slog.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{
		cacheDir: os.TempDir(),
		maxSize:  DefaultMaxSize,
		ttl:      DefaultTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures the cached store.
type Option func(*options)

// WithCacheDir sets the parent directory for cached files.
// Default is the system temp directory.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.cacheDir = dir
		}
	}
}

// WithMaxSize sets the maximum cache size in bytes.
// When the cache is full, new content is not cached until old entries expire.
func WithMaxSize(size int64) Option {
	return func(o *options) {
		if size > 0 {
			o.maxSize = size
		}
	}
}

// WithTTL sets the time-to-live for cached files.
// Set to 0 to disable expiry and the background cleanup.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
