// Package redis provides a Redis implementation of store.SnapshotStore.
//
// Each snapshot is a hash; a sorted set scored by saved_at (unix
// milliseconds) indexes them for DeleteBefore. Writes to both go through
// one MULTI/EXEC transaction.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rbaliyan/ews/store"
	goredis "github.com/redis/go-redis/v9"
)

// Compile-time check
var _ store.SnapshotStore = (*Store)(nil)

// Store implements store.SnapshotStore using Redis.
type Store struct {
	client    goredis.UniversalClient
	opts      *options
	connected int32
	logger    *slog.Logger
}

// New creates a new Redis store with the provided client.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	o := newOptions(opts...)
	return &Store{client: client, opts: o, logger: o.logger}
}

func (s *Store) key(k string) string { return s.opts.prefix + ":" + k }
func (s *Store) index() string       { return s.opts.prefix + ":saved" }

// Connect pings the server.
func (s *Store) Connect(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.connected, 0, 1) {
		return store.ErrAlreadyConnected
	}
	if s.client == nil {
		atomic.StoreInt32(&s.connected, 0)
		return fmt.Errorf("redis: client is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		atomic.StoreInt32(&s.connected, 0)
		return fmt.Errorf("redis ping: %w", err)
	}
	s.logger.Info("connected to Redis", "prefix", s.opts.prefix)
	return nil
}

// Close marks the store as disconnected.
// The caller is responsible for closing the Redis client.
func (s *Store) Close(context.Context) error {
	atomic.StoreInt32(&s.connected, 0)
	return nil
}

func (s *Store) checkConnected() error {
	if atomic.LoadInt32(&s.connected) == 0 {
		return store.ErrNotConnected
	}
	return nil
}

// Save writes the snapshot hash and its index entry atomically.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	k := s.key(snap.Key)
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, k)
		p.HSet(ctx, k,
			"change_key", snap.ChangeKey,
			"kind", snap.Kind,
			"version", snap.Version,
			"data", snap.Data,
			"checksum", snap.Checksum,
			"saved_at", savedAt.UnixMilli(),
		)
		if s.opts.ttl > 0 {
			p.Expire(ctx, k, s.opts.ttl)
		}
		p.ZAdd(ctx, s.index(), goredis.Z{Score: float64(savedAt.UnixMilli()), Member: snap.Key})
		return nil
	})
	if err != nil {
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

	m, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	if len(m) == 0 {
		return nil, store.ErrNotFound
	}
	ms, err := strconv.ParseInt(m["saved_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: saved_at: %w", err)
	}
	return &store.Snapshot{
		Key:       key,
		ChangeKey: m["change_key"],
		Kind:      m["kind"],
		Version:   m["version"],
		Data:      []byte(m["data"]),
		Checksum:  m["checksum"],
		SavedAt:   time.UnixMilli(ms).UTC(),
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

	var del *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		del = p.Del(ctx, s.key(key))
		p.ZRem(ctx, s.index(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if del.Val() == 0 {
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

	keys, err := s.client.ZRangeByScore(ctx, s.index(), &goredis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	members := make([]any, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
		members[i] = k
	}
	var del *goredis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		del = p.Del(ctx, full...)
		p.ZRem(ctx, s.index(), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	n := del.Val()
	if n > 0 {
		s.logger.Debug("deleted expired snapshots", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
