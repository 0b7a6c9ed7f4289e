package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rbaliyan/ews/store"
)

func connected(t *testing.T) *Store {
	t.Helper()
	s := New()
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return s
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Get(ctx, "k"); !errors.Is(err, store.ErrNotConnected) {
		t.Errorf("Get() before Connect error = %v, want ErrNotConnected", err)
	}
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := s.Connect(ctx); !errors.Is(err, store.ErrAlreadyConnected) {
		t.Errorf("second Connect() error = %v, want ErrAlreadyConnected", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestStoreSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := connected(t)

	snap := &store.Snapshot{Key: "AAMk1", ChangeKey: "CQAA1", Kind: "Message", Version: "Exchange2010", Data: []byte("<t:Message/>")}
	snap.Seal()
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	snap.Data[0] = 'x'

	got, err := s.Get(ctx, "AAMk1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := got.Verify(); err != nil {
		t.Errorf("stored snapshot shares caller data: %v", err)
	}
	if got.SavedAt.IsZero() {
		t.Error("SavedAt not stamped")
	}

	upd := got.Clone()
	upd.ChangeKey = "CQAA2"
	if err := s.Save(ctx, upd); err != nil {
		t.Fatalf("Save() upsert error = %v", err)
	}
	if got, _ := s.Get(ctx, "AAMk1"); got.ChangeKey != "CQAA2" {
		t.Errorf("ChangeKey = %q, want CQAA2", got.ChangeKey)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	if err := s.Delete(ctx, "AAMk1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "AAMk1"); !store.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "AAMk1"); !store.IsNotFound(err) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreSaveInvalid(t *testing.T) {
	s := connected(t)
	if err := s.Save(context.Background(), &store.Snapshot{Kind: "Message"}); !store.IsInvalidID(err) {
		t.Errorf("Save() error = %v, want ErrInvalidID", err)
	}
}

func TestStoreDeleteBefore(t *testing.T) {
	ctx := context.Background()
	s := connected(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, key := range []string{"a", "b", "c"} {
		snap := &store.Snapshot{Key: key, Kind: "Task", SavedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.Save(ctx, snap); err != nil {
			t.Fatalf("Save(%s) error = %v", key, err)
		}
	}
	n, err := s.DeleteBefore(ctx, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteBefore() = %d, want 2", n)
	}
	if _, err := s.Get(ctx, "c"); err != nil {
		t.Errorf("Get(c) error = %v", err)
	}
}

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	b := NewBlobStore()
	info := store.BlobInfo{Name: "report.pdf", ContentType: "application/pdf", Labels: map[string]string{"item": "AAMk1"}}
	uri, err := b.Put(ctx, info, strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(uri, "mem://") || !strings.HasSuffix(uri, "/report.pdf") {
		t.Errorf("Put() uri = %q", uri)
	}
	if got, ok := b.Info(uri); !ok || got.Labels["item"] != "AAMk1" {
		t.Errorf("Info() = %+v, %v", got, ok)
	}

	rc, err := b.Open(ctx, uri)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "%PDF" {
		t.Errorf("Open() content = %q", data)
	}

	if err := b.Delete(ctx, uri); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Open(ctx, uri); !store.IsNotFound(err) {
		t.Errorf("Open() after Delete error = %v, want ErrNotFound", err)
	}
	if _, err := b.Open(ctx, "s3://bucket/key"); !errors.Is(err, store.ErrInvalidURI) {
		t.Errorf("Open(foreign) error = %v, want ErrInvalidURI", err)
	}
}
