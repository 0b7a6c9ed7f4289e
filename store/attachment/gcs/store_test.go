package gcs

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rbaliyan/ews/store"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "valid", uri: "gs://b/ews/x.bin", wantBucket: "b", wantKey: "ews/x.bin"},
		{name: "no key", uri: "gs://b", wantErr: true},
		{name: "empty bucket", uri: "gs:///key", wantErr: true},
		{name: "wrong scheme", uri: "s3://b/key", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := parseGCSURI(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, store.ErrInvalidURI) {
					t.Fatalf("parseGCSURI(%q) error = %v, want ErrInvalidURI", tt.uri, err)
				}
				return
			}
			if err != nil || bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("parseGCSURI(%q) = %q, %q, %v", tt.uri, bucket, key, err)
			}
		})
	}
}

func TestGenerateKey(t *testing.T) {
	s := &Store{
		prefix: DefaultPrefix,
		now:    func() time.Time { return time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC) },
	}
	key := s.generateKey("invite.ics")
	if !strings.HasPrefix(key, DefaultPrefix+"/2023/12/31/") || !strings.HasSuffix(key, "/invite.ics") {
		t.Errorf("generateKey() = %q", key)
	}
}

func TestBuildClientOptions(t *testing.T) {
	opts, err := buildClientOptions(newOptions(WithAPIKey("k"), WithEndpoint("http://localhost:4443")))
	if err != nil {
		t.Fatalf("buildClientOptions() error = %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("buildClientOptions() returned %d options, want 2", len(opts))
	}
	if _, err := buildClientOptions(newOptions(WithCredentialsJSON([]byte("{")))); err == nil {
		t.Error("buildClientOptions() with malformed json: expected error")
	}
}

func TestUploadOptions(t *testing.T) {
	o := newOptions()
	if o.chunkSize != -1 || o.storageClass != "" {
		t.Errorf("defaults = chunk %d class %q, want -1 and empty", o.chunkSize, o.storageClass)
	}
	o = newOptions(WithStorageClass("ARCHIVE"), WithChunkSize(0), WithChunkSize(-5))
	if o.storageClass != "ARCHIVE" {
		t.Errorf("storageClass = %q, want ARCHIVE", o.storageClass)
	}
	if o.chunkSize != 0 {
		t.Errorf("chunkSize = %d, want 0", o.chunkSize)
	}
}
