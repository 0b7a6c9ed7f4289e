// Package mongo provides a MongoDB implementation of store.SnapshotStore.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rbaliyan/ews/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongoopts "go.mongodb.org/mongo-driver/v2/mongo/options"
)

// snapshotDoc is the stored document shape. The object id is the
// document _id, so Save is a single-document upsert.
type snapshotDoc struct {
	Key       string    `bson:"_id"`
	ChangeKey string    `bson:"change_key"`
	Kind      string    `bson:"kind"`
	Version   string    `bson:"version"`
	Data      []byte    `bson:"data"`
	Checksum  string    `bson:"checksum"`
	SavedAt   time.Time `bson:"saved_at"`
}

func toDoc(s *store.Snapshot) snapshotDoc {
	return snapshotDoc{
		Key:       s.Key,
		ChangeKey: s.ChangeKey,
		Kind:      s.Kind,
		Version:   s.Version,
		Data:      s.Data,
		Checksum:  s.Checksum,
		SavedAt:   s.SavedAt,
	}
}

func (d snapshotDoc) toSnapshot() *store.Snapshot {
	return &store.Snapshot{
		Key:       d.Key,
		ChangeKey: d.ChangeKey,
		Kind:      d.Kind,
		Version:   d.Version,
		Data:      d.Data,
		Checksum:  d.Checksum,
		SavedAt:   d.SavedAt.UTC(),
	}
}

// Store implements store.SnapshotStore using MongoDB.
type Store struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	opts       *options
	connected  int32
	logger     *slog.Logger
}

// New creates a new MongoDB store with the provided client.
// Call Connect() to initialize the collection and indexes.
func New(client *mongo.Client, opts ...Option) *Store {
	o := newOptions(opts...)
	return &Store{
		client: client,
		opts:   o,
		logger: o.logger,
	}
}

// Connect initializes the database, collection, and indexes.
func (s *Store) Connect(ctx context.Context) error {
	if atomic.LoadInt32(&s.connected) == 1 {
		return store.ErrAlreadyConnected
	}

	if s.client == nil {
		return fmt.Errorf("mongo: client is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	s.db = s.client.Database(s.opts.database)
	coll := mongoopts.Collection()
	if s.opts.wc != nil {
		coll.SetWriteConcern(s.opts.wc)
	}
	s.collection = s.db.Collection(s.opts.collection, coll)

	if err := s.ensureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	atomic.StoreInt32(&s.connected, 1)
	s.logger.Info("connected to MongoDB", "database", s.opts.database, "collection", s.opts.collection)
	return nil
}

// Close marks the store as disconnected.
// The caller is responsible for closing the MongoDB client.
func (s *Store) Close(ctx context.Context) error {
	atomic.StoreInt32(&s.connected, 0)
	return nil
}

// ensureIndexes creates required indexes.
func (s *Store) ensureIndexes(ctx context.Context) error {
	savedAt := mongo.IndexModel{Keys: bson.D{bson.E{Key: "saved_at", Value: 1}}}
	if s.opts.ttl > 0 {
		savedAt.Options = mongoopts.Index().SetExpireAfterSeconds(int32(s.opts.ttl / time.Second))
	}
	indexes := []mongo.IndexModel{
		savedAt,
		{Keys: bson.D{bson.E{Key: "kind", Value: 1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) checkConnected() error {
	if atomic.LoadInt32(&s.connected) == 0 {
		return store.ErrNotConnected
	}
	return nil
}

// Save upserts the snapshot under its key.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	doc := toDoc(snap)
	if doc.SavedAt.IsZero() {
		doc.SavedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	_, err := s.collection.ReplaceOne(ctx,
		bson.D{bson.E{Key: "_id", Value: doc.Key}},
		doc,
		mongoopts.Replace().SetUpsert(true),
	)
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

	var doc snapshotDoc
	err := s.collection.FindOne(ctx, bson.D{bson.E{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return doc.toSnapshot(), nil
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

	res, err := s.collection.DeleteOne(ctx, bson.D{bson.E{Key: "_id", Value: key}})
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBefore removes snapshots saved before cutoff in one DeleteMany.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.checkConnected(); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	res, err := s.collection.DeleteMany(ctx, bson.M{"saved_at": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	if res.DeletedCount > 0 {
		s.logger.Debug("deleted expired snapshots", "count", res.DeletedCount, "cutoff", cutoff)
	}
	return res.DeletedCount, nil
}

// Compile-time check
var _ store.SnapshotStore = (*Store)(nil)
