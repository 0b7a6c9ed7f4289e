// Package gcs provides a Google Cloud Storage store.BlobStore for archived
// attachments.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rbaliyan/ews/store"
	"google.golang.org/api/option"
)

const (
	scheme     = "gs://"
	storageAll = "https://www.googleapis.com/auth/cloud-platform"
)

// Store implements store.BlobStore using Google Cloud Storage.
type Store struct {
	client       *storage.Client
	bucket       string
	prefix       string
	storageClass string
	chunkSize    int
	logger       *slog.Logger
	now          func() time.Time
}

var _ store.BlobStore = (*Store)(nil)

// New creates a new GCS blob store.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	o := newOptions(opts...)
	if o.bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	clientOpts, err := buildClientOptions(o)
	if err != nil {
		return nil, fmt.Errorf("build client options: %w", err)
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &Store{
		client:       client,
		bucket:       o.bucket,
		prefix:       o.prefix,
		storageClass: o.storageClass,
		chunkSize:    o.chunkSize,
		logger:       o.logger,
		now:          time.Now,
	}, nil
}

// buildClientOptions builds GCS client options based on authentication
// settings. With no credential option Application Default Credentials apply.
func buildClientOptions(o *options) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	switch {
	case o.credentialsJSON != nil:
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes:          []string{storageAll},
			CredentialsJSON: o.credentialsJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("detect credentials from json: %w", err)
		}
		opts = append(opts, option.WithAuthCredentials(creds))

	case o.credentialsFile != "":
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes:          []string{storageAll},
			CredentialsFile: o.credentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("detect credentials from file: %w", err)
		}
		opts = append(opts, option.WithAuthCredentials(creds))

	case o.apiKey != "":
		opts = append(opts, option.WithAPIKey(o.apiKey))
	}

	if o.endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.endpoint))
	}

	return opts, nil
}

// Put uploads content and returns a gs://bucket/object URI. Labels are
// stored as object metadata.
func (s *Store) Put(ctx context.Context, info store.BlobInfo, content io.Reader) (string, error) {
	key := s.generateKey(info.Name)

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = info.ContentType
	w.StorageClass = s.storageClass
	if s.chunkSize >= 0 {
		w.ChunkSize = s.chunkSize
	}
	if len(info.Labels) > 0 {
		w.Metadata = info.Labels
	}

	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy content to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer: %w", err)
	}

	s.logger.Debug("archived attachment to gcs", "bucket", s.bucket, "key", key)
	return scheme + s.bucket + "/" + key, nil
}

// Open returns a reader for the object content.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := parseGCSURI(uri)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("create gcs reader: %w", err)
	}
	return r, nil
}

// Delete removes the object. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, uri string) error {
	bucket, key, err := parseGCSURI(uri)
	if err != nil {
		return err
	}

	err = s.client.Bucket(bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete object from gcs: %w", err)
	}

	s.logger.Debug("deleted archived attachment from gcs", "bucket", bucket, "key", key)
	return nil
}

// Close closes the GCS client.
func (s *Store) Close() error {
	return s.client.Close()
}

// generateKey creates a unique date-partitioned object name.
func (s *Store) generateKey(filename string) string {
	now := s.now().UTC()
	return path.Join(s.prefix, now.Format("2006/01/02"), uuid.New().String(), path.Base("/"+filename))
}

// parseGCSURI parses a gs:// URI into bucket and object name.
func parseGCSURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", store.ErrInvalidURI, uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w (no key): %s", store.ErrInvalidURI, uri)
	}
	return bucket, key, nil
}
