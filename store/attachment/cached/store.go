// Package cached provides a local file cache in front of a store.BlobStore.
package cached

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rbaliyan/ews/store"
	"golang.org/x/crypto/blake2b"
)

// cacheDirName is created under the configured cache directory.
const cacheDirName = "ews-attachments"

// Store wraps a BlobStore with local file caching of Open results.
type Store struct {
	backend  store.BlobStore
	cacheDir string
	maxSize  int64
	ttl      time.Duration
	logger   *slog.Logger

	mu        sync.RWMutex
	cacheSize int64

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ store.BlobStore = (*Store)(nil)

// New creates a cached blob store wrapping backend.
// Call Close to stop the background cleanup.
func New(backend store.BlobStore, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	o := newOptions(opts...)

	cacheDir := filepath.Join(o.cacheDir, cacheDirName)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	s := &Store{
		backend:  backend,
		cacheDir: cacheDir,
		maxSize:  o.maxSize,
		ttl:      o.ttl,
		logger:   o.logger,
		done:     make(chan struct{}),
	}
	s.calculateCacheSize()

	if o.ttl > 0 {
		s.wg.Add(1)
		go s.cleanupLoop()
	}
	return s, nil
}

// Put stores content in the backend. Caching happens on Open.
func (s *Store) Put(ctx context.Context, info store.BlobInfo, content io.Reader) (string, error) {
	return s.backend.Put(ctx, info, content)
}

// Open returns the content, from the cache when a fresh copy exists.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	cachePath := s.cachePath(uri)

	if info, err := os.Stat(cachePath); err == nil {
		if s.ttl == 0 || time.Since(info.ModTime()) < s.ttl {
			if f, err := os.Open(cachePath); err == nil {
				s.logger.Debug("cache hit", "uri", uri)
				return f, nil
			}
		} else if os.Remove(cachePath) == nil {
			s.updateCacheSize(-info.Size())
		}
	}

	s.logger.Debug("cache miss", "uri", uri)
	reader, err := s.backend.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	return s.cacheAndRead(reader, cachePath), nil
}

// Delete removes the content from the cache and the backend.
func (s *Store) Delete(ctx context.Context, uri string) error {
	cachePath := s.cachePath(uri)
	if info, err := os.Stat(cachePath); err == nil && os.Remove(cachePath) == nil {
		s.updateCacheSize(-info.Size())
	}
	return s.backend.Delete(ctx, uri)
}

// ClearCache removes all cached files.
func (s *Store) ClearCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			if err := os.Remove(filepath.Join(s.cacheDir, entry.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}

	s.cacheSize = 0
	s.logger.Info("cache cleared")
	return errors.Join(errs...)
}

// Size returns the bytes currently accounted to the cache.
func (s *Store) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cacheSize
}

// Close stops the background cleanup. The backend is not closed.
func (s *Store) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}

// cachePath maps a URI to a file named by its BLAKE2b-256 digest.
func (s *Store) cachePath(uri string) string {
	h := blake2b.Sum256([]byte(uri))
	return filepath.Join(s.cacheDir, hex.EncodeToString(h[:]))
}

// cacheAndRead returns a reader that copies source into the cache while
// it is read. If no temp file can be created the source is returned as is.
func (s *Store) cacheAndRead(source io.ReadCloser, cachePath string) io.ReadCloser {
	tmpFile, err := os.CreateTemp(s.cacheDir, "tmp-*")
	if err != nil {
		s.logger.Warn("failed to create temp file for caching", "error", err)
		return source
	}
	return &cachingReader{
		source:    source,
		tmpFile:   tmpFile,
		cachePath: cachePath,
		store:     s,
	}
}

// cachingReader reads from source while writing to a temp file. The temp
// file is promoted into the cache only after source reached EOF cleanly.
type cachingReader struct {
	source    io.ReadCloser
	tmpFile   *os.File
	cachePath string
	store     *Store
	size      int64
	complete  bool
	failed    bool
	closed    bool
}

func (r *cachingReader) Read(p []byte) (int, error) {
	n, err := r.source.Read(p)
	if n > 0 && !r.failed {
		if _, werr := r.tmpFile.Write(p[:n]); werr != nil {
			r.store.logger.Warn("failed to write to cache", "error", werr)
			r.failed = true
		}
		r.size += int64(n)
	}
	switch {
	case err == io.EOF:
		r.complete = true
	case err != nil:
		r.failed = true
	}
	return n, err
}

func (r *cachingReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	sourceErr := r.source.Close()
	tmpName := r.tmpFile.Name()
	if err := r.tmpFile.Close(); err != nil || !r.complete || r.failed {
		_ = os.Remove(tmpName)
		return sourceErr
	}

	if !r.store.hasSpace(r.size) {
		_ = os.Remove(tmpName)
		r.store.logger.Debug("cache full, not caching", "size", r.size)
		return sourceErr
	}
	if err := os.Rename(tmpName, r.cachePath); err != nil {
		_ = os.Remove(tmpName)
		r.store.logger.Warn("failed to move temp file to cache", "error", err)
		return sourceErr
	}
	r.store.updateCacheSize(r.size)
	r.store.logger.Debug("cached attachment", "path", r.cachePath, "size", r.size)
	return sourceErr
}

// hasSpace checks if there's space for a file of the given size.
func (s *Store) hasSpace(size int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cacheSize+size <= s.maxSize
}

func (s *Store) updateCacheSize(delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheSize += delta
	if s.cacheSize < 0 {
		s.cacheSize = 0
	}
}

// calculateCacheSize sums the finished entries already on disk.
func (s *Store) calculateCacheSize() {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		s.logger.Warn("failed to calculate cache size", "error", err)
		return
	}
	var size int64
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		if info, err := entry.Info(); err == nil {
			size += info.Size()
		}
	}
	s.mu.Lock()
	s.cacheSize = size
	s.mu.Unlock()
}

func (s *Store) cleanupLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanupExpired(time.Now())
		}
	}
}

// cleanupExpired removes cache entries older than the TTL.
func (s *Store) cleanupExpired(now time.Time) {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		s.logger.Warn("failed to read cache dir for cleanup", "error", err)
		return
	}

	var removed int
	var freedBytes int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || now.Sub(info.ModTime()) <= s.ttl {
			continue
		}
		if err := os.Remove(filepath.Join(s.cacheDir, entry.Name())); err == nil {
			removed++
			if !strings.HasPrefix(entry.Name(), "tmp-") {
				freedBytes += info.Size()
			}
		}
	}

	if removed > 0 {
		s.updateCacheSize(-freedBytes)
		s.logger.Info("cache cleanup completed", "removed", removed, "freed_bytes", freedBytes)
	}
}
