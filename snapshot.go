package ews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbaliyan/ews/store"
	"github.com/rbaliyan/ews/wire"
)

// saveSnapshot persists the loaded properties of o. Failures are logged;
// a snapshot never fails the operation that produced it.
func (s *service) saveSnapshot(ctx context.Context, o *object) {
	if s.opts.snapshots == nil {
		return
	}
	id := o.ID()
	if id == nil || id.UniqueID() == "" {
		return
	}

	w := wire.NewWriter()
	o.bag.WriteValuesXML(w)
	data, err := w.Bytes()
	if err != nil {
		s.logger.Warn("failed to serialize snapshot", "id", id, "kind", o.kind.Name(), "error", err)
		return
	}
	snap := &store.Snapshot{
		Key:       id.UniqueID(),
		ChangeKey: id.ChangeKey(),
		Kind:      o.kind.Name(),
		Version:   s.opts.version.String(),
		Data:      data,
		SavedAt:   time.Now().UTC(),
	}
	snap.Seal()
	if err := s.opts.snapshots.Save(ctx, snap); err != nil {
		s.logger.Warn("failed to save snapshot", "id", id, "kind", o.kind.Name(), "error", err)
	}
}

// deleteSnapshot removes the snapshot of a deleted object.
func (s *service) deleteSnapshot(ctx context.Context, key string) {
	if s.opts.snapshots == nil || key == "" {
		return
	}
	if err := s.opts.snapshots.Delete(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("failed to delete snapshot", "id", key, "error", err)
	}
}

// BindCached rehydrates an object from its snapshot. The object is bound:
// its snapshot properties are loaded and it has no pending changes. Only
// the properties the snapshot holds count as loaded; reading any other
// fails with property.ErrNotLoaded.
// A snapshot written for another protocol version is reported as not found.
func (s *service) BindCached(ctx context.Context, id string) (Object, error) {
	if err := s.checkAccess(); err != nil {
		return nil, err
	}
	if s.opts.snapshots == nil {
		return nil, ErrSnapshotStoreNotConfigured
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	snap, err := s.opts.snapshots.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	if err := snap.Verify(); err != nil {
		if store.IsCorrupt(err) {
			s.logger.Warn("dropping corrupt snapshot", "id", id)
			_ = s.opts.snapshots.Delete(ctx, id)
		}
		return nil, err
	}
	if snap.Version != s.opts.version.String() {
		return nil, fmt.Errorf("%w: snapshot %s was written for %s", ErrNotFound, id, snap.Version)
	}
	kind, ok := KindOf(snap.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: snapshot %s has unknown kind %q", ErrKindMismatch, id, snap.Kind)
	}

	o := newObject(s, kind)
	r := wire.NewReaderBytes(snap.Data)
	if err := r.ReadToStart(wire.NamespaceTypes, kind.Name()); err != nil {
		return nil, wire.Deserialize(kind.Name(), "", err)
	}
	if err := o.bag.LoadXML(r, true, nil, false); err != nil {
		return nil, err
	}
	if o.IsNew() {
		return nil, fmt.Errorf("%w: snapshot %s has no id", ErrUnexpectedResponse, id)
	}
	return wrap(o), nil
}

// CleanupSnapshotsResult contains the result of a snapshot cleanup operation.
type CleanupSnapshotsResult struct {
	// DeletedCount is the number of snapshots removed.
	DeletedCount int
	// Cutoff is the save time before which snapshots were removed.
	Cutoff time.Time
}

// CleanupSnapshots deletes snapshots saved longer ago than the configured
// retention period (default 7 days).
//
// This method should be called periodically by the application using its own
// scheduler (e.g., cron job, background worker). The library does not
// automatically run cleanup to give applications full control over scheduling.
//
// Example with a simple ticker:
//
//	go func() {
//	    ticker := time.NewTicker(1 * time.Hour)
//	    defer ticker.Stop()
//	    for range ticker.C {
//	        result, err := svc.CleanupSnapshots(ctx)
//	        if err != nil {
//	            log.Printf("snapshot cleanup error: %v", err)
//	        } else if result.DeletedCount > 0 {
//	            log.Printf("cleaned up %d expired snapshots", result.DeletedCount)
//	        }
//	    }
//	}()
func (s *service) CleanupSnapshots(ctx context.Context) (*CleanupSnapshotsResult, error) {
	if err := s.checkAccess(); err != nil {
		return nil, err
	}
	if s.opts.snapshots == nil {
		return nil, ErrSnapshotStoreNotConfigured
	}

	result := &CleanupSnapshotsResult{Cutoff: time.Now().UTC().Add(-s.opts.snapshotRetention)}
	deleted, err := s.opts.snapshots.DeleteBefore(ctx, result.Cutoff)
	if err != nil {
		return result, fmt.Errorf("delete expired snapshots: %w", err)
	}
	result.DeletedCount = int(deleted)
	if deleted > 0 {
		s.logger.Debug("deleted expired snapshots", "count", deleted)
	}
	return result, nil
}
