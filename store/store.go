// Package store provides interfaces and types for persisting object
// snapshots and archived attachment content. Snapshot implementations are
// in store/memory, store/mongo, store/postgres and store/redis; blob
// implementations are in store/memory and store/attachment.
//
// # Architectural Principle: No Distributed Locks
//
// Snapshots are keyed by the server-assigned object id and written with
// database-native upserts (MongoDB ReplaceOne with upsert, PostgreSQL
// INSERT ... ON CONFLICT, a Redis MULTI/EXEC pipeline). Concurrent writers
// of one object converge on the last write; the change key recorded in
// the snapshot tells readers which server revision they hold. Retention
// cleanup is a single bulk delete that any number of instances may run
// concurrently.
package store

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Snapshot is the persisted state of one bound object: the serialized
// loaded properties plus enough identity to rehydrate it offline.
type Snapshot struct {
	// Key is the object's unique id.
	Key string
	// ChangeKey is the server revision the data was captured at.
	ChangeKey string
	// Kind is the object element name, e.g. "Message" or "CalendarItem".
	Kind string
	// Version is the protocol version name the data was serialized for.
	Version string
	// Data is the serialized object element.
	Data []byte
	// Checksum is the hex BLAKE2b-256 digest of Data.
	Checksum string
	// SavedAt is when the snapshot was written.
	SavedAt time.Time
}

// Checksum returns the hex BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Seal records the checksum of Data.
func (s *Snapshot) Seal() {
	s.Checksum = Checksum(s.Data)
}

// Verify reports ErrChecksumMismatch when Data was altered after Seal.
func (s *Snapshot) Verify() error {
	if got := Checksum(s.Data); got != s.Checksum {
		return fmt.Errorf("%w: snapshot %s", ErrChecksumMismatch, s.Key)
	}
	return nil
}

// Validate checks the fields every backend requires.
func (s *Snapshot) Validate() error {
	if s == nil || s.Key == "" {
		return fmt.Errorf("%w: empty snapshot key", ErrInvalidID)
	}
	if s.Kind == "" {
		return fmt.Errorf("%w: snapshot %s has no kind", ErrInvalidID, s.Key)
	}
	return nil
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Data = append([]byte(nil), s.Data...)
	return &c
}

// SnapshotStore persists snapshots.
//
// All operations must be safe for concurrent use. Implementations must use
// database-level atomicity rather than external locking. See package
// documentation for details.
type SnapshotStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	// Save inserts or replaces the snapshot stored under snap.Key.
	Save(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by key.
	// Returns ErrNotFound if no snapshot exists.
	Get(ctx context.Context, key string) (*Snapshot, error)

	// Delete removes a snapshot.
	// Returns ErrNotFound if no snapshot exists.
	Delete(ctx context.Context, key string) error

	// DeleteBefore removes every snapshot saved before cutoff and returns
	// how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// BlobInfo describes content handed to a BlobStore.
type BlobInfo struct {
	// Name is the original file name. It becomes the last key segment.
	Name string
	// ContentType is the MIME type stored with the object.
	ContentType string
	// Labels are stored as object metadata where the backend supports it.
	Labels map[string]string
}

// BlobStore handles archived attachment content.
// Implementations can support S3, GCS, memory, etc.
type BlobStore interface {
	// Put stores content and returns a URI for later retrieval.
	Put(ctx context.Context, info BlobInfo, content io.Reader) (uri string, err error)

	// Open returns a reader for the content.
	// Caller is responsible for closing the reader.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)

	// Delete removes the content from storage.
	Delete(ctx context.Context, uri string) error
}
