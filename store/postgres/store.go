// Package postgres provides a PostgreSQL implementation of store.SnapshotStore.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rbaliyan/ews/store"
)

// Compile-time check
var _ store.SnapshotStore = (*Store)(nil)

type snapshotRow struct {
	Key       string    `db:"key"`
	ChangeKey string    `db:"change_key"`
	Kind      string    `db:"kind"`
	Version   string    `db:"version"`
	Data      []byte    `db:"data"`
	Checksum  string    `db:"checksum"`
	SavedAt   time.Time `db:"saved_at"`
}

// Store implements store.SnapshotStore using PostgreSQL.
type Store struct {
	db        *sqlx.DB
	opts      *options
	table     string
	connected int32
	logger    *slog.Logger
}

// New creates a new PostgreSQL store with the provided database connection.
// Call Connect() to initialize the schema and indexes.
func New(db *sqlx.DB, opts ...Option) *Store {
	o := newOptions(opts...)
	return &Store{
		db:     db,
		opts:   o,
		table:  o.qualifiedTable(),
		logger: o.logger,
	}
}

// NewFromDB creates a new PostgreSQL store from a standard sql.DB connection.
// This wraps the sql.DB with sqlx for enhanced functionality.
func NewFromDB(db *sql.DB, opts ...Option) *Store {
	return New(sqlx.NewDb(db, "postgres"), opts...)
}

// Connect initializes the schema and indexes.
func (s *Store) Connect(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.connected, 0, 1) {
		return store.ErrAlreadyConnected
	}

	if s.db == nil {
		atomic.StoreInt32(&s.connected, 0)
		return fmt.Errorf("postgres: db is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		atomic.StoreInt32(&s.connected, 0)
		return fmt.Errorf("postgres ping: %w", err)
	}

	if s.opts.migrate {
		if err := s.ensureSchema(ctx); err != nil {
			atomic.StoreInt32(&s.connected, 0)
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	s.logger.Info("connected to PostgreSQL", "table", s.table, "migrate", s.opts.migrate)
	return nil
}

// Close marks the store as disconnected.
// The caller is responsible for closing the database connection.
func (s *Store) Close(ctx context.Context) error {
	atomic.StoreInt32(&s.connected, 0)
	return nil
}

// ensureSchema creates the required table and indexes.
func (s *Store) ensureSchema(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			change_key TEXT NOT NULL DEFAULT '',
			kind VARCHAR(64) NOT NULL,
			version VARCHAR(32) NOT NULL DEFAULT '',
			data BYTEA NOT NULL,
			checksum CHAR(64) NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(saved_at)`,
		pq.QuoteIdentifier("idx_"+s.opts.table+"_saved_at"), s.table)
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		s.logger.Warn("failed to create index", "error", err, "sql", idx)
	}
	return nil
}

// checkConnected returns error if not connected.
func (s *Store) checkConnected() error {
	if atomic.LoadInt32(&s.connected) == 0 {
		return store.ErrNotConnected
	}
	return nil
}

// Save upserts the snapshot with INSERT ... ON CONFLICT.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	row := snapshotRow{
		Key:       snap.Key,
		ChangeKey: snap.ChangeKey,
		Kind:      snap.Kind,
		Version:   snap.Version,
		Data:      snap.Data,
		Checksum:  snap.Checksum,
		SavedAt:   snap.SavedAt,
	}
	if row.SavedAt.IsZero() {
		row.SavedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (key, change_key, kind, version, data, checksum, saved_at)
		VALUES (:key, :change_key, :kind, :version, :data, :checksum, :saved_at)
		ON CONFLICT (key) DO UPDATE SET
			change_key = EXCLUDED.change_key,
			kind = EXCLUDED.kind,
			version = EXCLUDED.version,
			data = EXCLUDED.data,
			checksum = EXCLUDED.checksum,
			saved_at = EXCLUDED.saved_at
	`, s.table)
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by key.
func (s *Store) Get(ctx context.Context, key string) (*store.Snapshot, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, store.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	var row snapshotRow
	query := fmt.Sprintf(`
		SELECT key, change_key, kind, version, data, checksum, saved_at
		FROM %s
		WHERE key = $1
	`, s.table)
	err := s.db.GetContext(ctx, &row, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &store.Snapshot{
		Key:       row.Key,
		ChangeKey: row.ChangeKey,
		Kind:      row.Kind,
		Version:   row.Version,
		Data:      row.Data,
		Checksum:  row.Checksum,
		SavedAt:   row.SavedAt.UTC(),
	}, nil
}

// Delete removes a snapshot by key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if key == "" {
		return store.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table), key)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBefore removes snapshots saved before cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.checkConnected(); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE saved_at < $1`, s.table), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	if n > 0 {
		s.logger.Debug("deleted expired snapshots", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
