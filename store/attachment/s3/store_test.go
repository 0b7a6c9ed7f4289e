package s3

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rbaliyan/ews/store"
)

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{uri: "s3://bucket/ews/a/b.txt", wantBucket: "bucket", wantKey: "ews/a/b.txt"},
		{uri: "s3://bucket/", wantErr: true},
		{uri: "s3://bucket", wantErr: true},
		{uri: "gs://bucket/key", wantErr: true},
		{uri: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, err := parseS3URI(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, store.ErrInvalidURI) {
					t.Fatalf("parseS3URI() error = %v, want ErrInvalidURI", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseS3URI() error = %v", err)
			}
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("parseS3URI() = %q, %q", bucket, key)
			}
		})
	}
}

func TestGenerateKey(t *testing.T) {
	s := &Store{
		prefix: "archive",
		now:    func() time.Time { return time.Date(2024, 5, 6, 23, 0, 0, 0, time.UTC) },
	}
	key := s.generateKey("../../etc/report.pdf")
	if !strings.HasPrefix(key, "archive/2024/05/06/") {
		t.Errorf("generateKey() = %q, want date-partitioned prefix", key)
	}
	if !strings.HasSuffix(key, "/report.pdf") {
		t.Errorf("generateKey() = %q, want base file name", key)
	}
	if strings.Contains(key, "..") {
		t.Errorf("generateKey() = %q escapes prefix", key)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(t.Context()); err == nil {
		t.Error("New() without bucket: expected error")
	}
}

func TestNewOptions(t *testing.T) {
	o := newOptions(WithRegion(""), WithAssumeRole("arn:aws:iam::1:role/r", ""), WithRoleDuration(-1))
	if o.region != DefaultRegion {
		t.Errorf("region = %q, want default", o.region)
	}
	if o.roleSessionName != DefaultSessionName {
		t.Errorf("roleSessionName = %q, want default", o.roleSessionName)
	}
	if o.roleDuration != 0 {
		t.Errorf("roleDuration = %v, want 0", o.roleDuration)
	}
}
