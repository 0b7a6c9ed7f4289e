package mongo

import (
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

const (
	DefaultDatabase   = "ews"
	DefaultCollection = "snapshots"
	DefaultTimeout    = 10 * time.Second
)

type options struct {
	database   string
	collection string
	timeout    time.Duration
	ttl        time.Duration              // 0: no TTL index
	wc         *writeconcern.WriteConcern // nil: client default
	logger     *slog.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{
		database:   DefaultDatabase,
		collection: DefaultCollection,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a Store.
type Option func(*options)

func WithDatabase(name string) Option {
	return func(o *options) {
		if name != "" {
			o.database = name
		}
	}
}

func WithCollection(name string) Option {
	return func(o *options) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithTimeout bounds each operation, including the ping in Connect.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTTL makes MongoDB expire snapshots ttl after they were saved, using a
// TTL index on saved_at. DeleteBefore keeps working either way.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithMajorityWrites acknowledges snapshot writes only once a majority of
// the replica set has them, so a snapshot survives a primary failover.
func WithMajorityWrites() Option {
	return func(o *options) { o.wc = writeconcern.Majority() }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
