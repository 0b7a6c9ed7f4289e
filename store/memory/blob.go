package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rbaliyan/ews/store"
)

const blobScheme = "mem://"

type blob struct {
	info store.BlobInfo
	data []byte
}

// BlobStore implements store.BlobStore in memory.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]blob)}
}

// Put reads content fully and returns a mem:// URI.
func (b *BlobStore) Put(ctx context.Context, info store.BlobInfo, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	uri := blobScheme + uuid.New().String() + "/" + info.Name
	b.mu.Lock()
	b.blobs[uri] = blob{info: info, data: data}
	b.mu.Unlock()
	return uri, nil
}

// Open returns a reader over the stored content.
func (b *BlobStore) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	if !strings.HasPrefix(uri, blobScheme) {
		return nil, fmt.Errorf("%w: %s", store.ErrInvalidURI, uri)
	}
	b.mu.RLock()
	bl, ok := b.blobs[uri]
	b.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(bl.data)), nil
}

// Delete removes the content. Deleting a missing URI is not an error.
func (b *BlobStore) Delete(_ context.Context, uri string) error {
	if !strings.HasPrefix(uri, blobScheme) {
		return fmt.Errorf("%w: %s", store.ErrInvalidURI, uri)
	}
	b.mu.Lock()
	delete(b.blobs, uri)
	b.mu.Unlock()
	return nil
}

// Info returns the metadata stored with uri.
func (b *BlobStore) Info(uri string) (store.BlobInfo, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bl, ok := b.blobs[uri]
	return bl.info, ok
}

var _ store.BlobStore = (*BlobStore)(nil)
