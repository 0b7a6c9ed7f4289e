// Package memory provides in-memory SnapshotStore and BlobStore
// implementations for testing.
// These stores are not suitable for production use - data is not persisted.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rbaliyan/ews/store"
)

// Store implements store.SnapshotStore with in-memory storage.
// Thread-safe for concurrent use. Not suitable for production.
type Store struct {
	snapshots sync.Map // map[string]*store.Snapshot
	connected int32
	now       func() time.Time
}

// New creates a new in-memory snapshot store.
func New() *Store {
	return &Store{now: time.Now}
}

// Connect marks the store as connected.
func (s *Store) Connect(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.connected, 0, 1) {
		return store.ErrAlreadyConnected
	}
	return nil
}

// Close marks the store as disconnected.
func (s *Store) Close(_ context.Context) error {
	atomic.StoreInt32(&s.connected, 0)
	return nil
}

func (s *Store) checkConnected() error {
	if atomic.LoadInt32(&s.connected) == 0 {
		return store.ErrNotConnected
	}
	return nil
}

// Save stores a copy of snap, stamping SavedAt when it is zero.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c := snap.Clone()
	if c.SavedAt.IsZero() {
		c.SavedAt = s.now().UTC()
	}
	s.snapshots.Store(c.Key, c)
	return nil
}

// Get returns a copy of the snapshot stored under key.
func (s *Store) Get(_ context.Context, key string) (*store.Snapshot, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, store.ErrInvalidID
	}
	v, ok := s.snapshots.Load(key)
	if !ok {
		return nil, store.ErrNotFound
	}
	return v.(*store.Snapshot).Clone(), nil
}

// Delete removes the snapshot stored under key.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if key == "" {
		return store.ErrInvalidID
	}
	if _, ok := s.snapshots.LoadAndDelete(key); !ok {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBefore removes snapshots saved before cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.checkConnected(); err != nil {
		return 0, err
	}
	var n int64
	s.snapshots.Range(func(k, v any) bool {
		if ctx.Err() != nil {
			return false
		}
		if v.(*store.Snapshot).SavedAt.Before(cutoff) {
			if _, ok := s.snapshots.LoadAndDelete(k); ok {
				n++
			}
		}
		return true
	})
	return n, ctx.Err()
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	n := 0
	s.snapshots.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Compile-time check
var _ store.SnapshotStore = (*Store)(nil)
