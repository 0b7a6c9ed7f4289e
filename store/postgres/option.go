package postgres

import (
	"log/slog"
	"time"

	"github.com/lib/pq"
)

const (
	// DefaultTable holds one row per object snapshot.
	DefaultTable = "ews_snapshots"
	// DefaultTimeout bounds every statement.
	DefaultTimeout = 10 * time.Second
)

type options struct {
	schema  string // empty: the connection's search_path
	table   string
	migrate bool
	timeout time.Duration
	logger  *slog.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{
		table:   DefaultTable,
		migrate: true,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// qualifiedTable returns the quoted, schema-qualified snapshot table.
func (o *options) qualifiedTable() string {
	if o.schema == "" {
		return pq.QuoteIdentifier(o.table)
	}
	return pq.QuoteIdentifier(o.schema) + "." + pq.QuoteIdentifier(o.table)
}

// Option configures a Store.
type Option func(*options)

// WithTable names the snapshot table.
func WithTable(name string) Option {
	return func(o *options) {
		if name != "" {
			o.table = name
		}
	}
}

// WithSchema places the snapshot table in a PostgreSQL schema. The schema
// must exist.
func WithSchema(name string) Option {
	return func(o *options) { o.schema = name }
}

// WithoutMigration makes Connect only ping the database. Use it when the
// table is created by external migrations.
func WithoutMigration() Option {
	return func(o *options) { o.migrate = false }
}

// WithTimeout bounds each statement.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
