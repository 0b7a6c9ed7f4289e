package ews

import (
	"log/slog"
	"testing"
	"time"

	"github.com/rbaliyan/ews/retry"
	"github.com/rbaliyan/ews/wire"
)

func TestNewOptions(t *testing.T) {
	t.Run("returns defaults without options", func(t *testing.T) {
		opts := newOptions()

		if opts.version != DefaultVersion {
			t.Errorf("expected version %v, got %v", DefaultVersion, opts.version)
		}
		if opts.format != wire.FormatXML {
			t.Errorf("expected XML format, got %v", opts.format)
		}
		if opts.snapshotRetention != DefaultSnapshotRetention {
			t.Errorf("expected snapshotRetention %v, got %v", DefaultSnapshotRetention, opts.snapshotRetention)
		}
		if opts.maxPageSize != DefaultMaxPageSize {
			t.Errorf("expected maxPageSize %v, got %v", DefaultMaxPageSize, opts.maxPageSize)
		}
		if opts.defaultPageSize != DefaultPageSize {
			t.Errorf("expected defaultPageSize %v, got %v", DefaultPageSize, opts.defaultPageSize)
		}
		if opts.subscriptionTimeout != DefaultSubscriptionTimeout {
			t.Errorf("expected subscriptionTimeout %v, got %v", DefaultSubscriptionTimeout, opts.subscriptionTimeout)
		}
		if opts.maxConcurrentRequests != DefaultMaxConcurrentRequests {
			t.Errorf("expected maxConcurrentRequests %v, got %v", DefaultMaxConcurrentRequests, opts.maxConcurrentRequests)
		}
		if opts.retry.MaxRetries != retry.DefaultConfig().MaxRetries {
			t.Errorf("expected default retries, got %d", opts.retry.MaxRetries)
		}
		if opts.retry.IsRetryable == nil || opts.onEventPublishFailure == nil {
			t.Error("expected retry classifier and publish failure handler to be set")
		}
	})

	t.Run("clamps default page size to maximum", func(t *testing.T) {
		opts := newOptions(WithMaxPageSize(50), WithDefaultPageSize(200))
		if opts.defaultPageSize != 50 {
			t.Errorf("expected defaultPageSize 50, got %d", opts.defaultPageSize)
		}
	})
}

func TestWithLogger(t *testing.T) {
	t.Run("sets custom logger", func(t *testing.T) {
		customLogger := slog.Default()
		opts := newOptions(WithLogger(customLogger))
		if opts.logger != customLogger {
			t.Error("expected custom logger to be set")
		}
	})

	t.Run("ignores nil logger", func(t *testing.T) {
		opts := newOptions(WithLogger(nil))
		if opts.logger == nil {
			t.Error("expected default logger when nil passed")
		}
	})
}

func TestWithVersionAndFormat(t *testing.T) {
	opts := newOptions(WithVersion(wire.Exchange2010SP1), WithFormat(wire.FormatJSON))
	if opts.version != wire.Exchange2010SP1 {
		t.Errorf("expected version Exchange2010SP1, got %v", opts.version)
	}
	if opts.format != wire.FormatJSON {
		t.Errorf("expected JSON format, got %v", opts.format)
	}
	if s := opts.settings(); s.Version != wire.Exchange2010SP1 {
		t.Errorf("expected settings version Exchange2010SP1, got %v", s.Version)
	}
}

func TestWithSnapshotRetention(t *testing.T) {
	t.Run("sets custom retention", func(t *testing.T) {
		opts := newOptions(WithSnapshotRetention(48 * time.Hour))
		if opts.snapshotRetention != 48*time.Hour {
			t.Errorf("expected retention 48h, got %v", opts.snapshotRetention)
		}
	})

	t.Run("ignores retention below minimum", func(t *testing.T) {
		opts := newOptions(WithSnapshotRetention(time.Minute))
		if opts.snapshotRetention != DefaultSnapshotRetention {
			t.Errorf("expected default retention %v, got %v", DefaultSnapshotRetention, opts.snapshotRetention)
		}
	})
}

func TestWithSubscriptionTimeout(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want time.Duration
	}{
		{"valid", 10 * time.Minute, 10 * time.Minute},
		{"below minimum", 30 * time.Second, DefaultSubscriptionTimeout},
		{"above maximum", 48 * time.Hour, DefaultSubscriptionTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := newOptions(WithSubscriptionTimeout(tt.d))
			if opts.subscriptionTimeout != tt.want {
				t.Errorf("expected timeout %v, got %v", tt.want, opts.subscriptionTimeout)
			}
		})
	}
}

func TestRetryOptions(t *testing.T) {
	t.Run("without retry", func(t *testing.T) {
		opts := newOptions(WithoutRetry())
		if opts.retry.MaxRetries != 0 {
			t.Errorf("expected no retries, got %d", opts.retry.MaxRetries)
		}
	})

	t.Run("custom config keeps the classifier", func(t *testing.T) {
		opts := newOptions(WithRetry(retry.Config{MaxRetries: 5}))
		if opts.retry.MaxRetries != 5 {
			t.Errorf("expected 5 retries, got %d", opts.retry.MaxRetries)
		}
		if opts.retry.IsRetryable == nil {
			t.Error("expected IsRetryable to default to IsRetryableError")
		}
	})
}

func TestWithOTel(t *testing.T) {
	t.Run("enables both tracing and metrics", func(t *testing.T) {
		opts := newOptions(WithOTel(true))
		if !opts.tracingEnabled || !opts.metricsEnabled {
			t.Error("expected tracing and metrics to be enabled")
		}
	})

	t.Run("individual switches", func(t *testing.T) {
		opts := newOptions(WithTracing(true), WithMetrics(false))
		if !opts.tracingEnabled || opts.metricsEnabled {
			t.Errorf("expected tracing only, got tracing=%v metrics=%v", opts.tracingEnabled, opts.metricsEnabled)
		}
	})
}

func TestWithServiceName(t *testing.T) {
	opts := newOptions(WithServiceName("calendar-sync"))
	if opts.serviceName != "calendar-sync" {
		t.Errorf("expected service name calendar-sync, got %q", opts.serviceName)
	}
	opts = newOptions(WithServiceName(""))
	if opts.serviceName != "" {
		t.Errorf("expected empty service name to be ignored, got %q", opts.serviceName)
	}
}

func TestItemLimitOptions(t *testing.T) {
	opts := newOptions(
		WithMaxSubjectLength(100),
		WithMaxBodySize(1024),
		WithMaxAttachmentSize(2048),
		WithMaxAttachmentCount(3),
		WithMaxRecipients(4),
	)
	want := ItemLimits{
		MaxSubjectLength:   100,
		MaxBodySize:        1024,
		MaxAttachmentSize:  2048,
		MaxAttachmentCount: 3,
		MaxRecipientCount:  4,
	}
	if got := opts.getLimits(); got != want {
		t.Errorf("getLimits() = %+v, want %+v", got, want)
	}

	opts = newOptions(WithMaxSubjectLength(0), WithMaxRecipients(-1))
	if got := opts.getLimits(); got != DefaultLimits() {
		t.Errorf("getLimits() with invalid values = %+v, want defaults", got)
	}
}

func TestWithPlugins(t *testing.T) {
	opts := newOptions(WithPlugin(nil), WithPlugins(nil, nil))
	if len(opts.plugins) != 0 {
		t.Errorf("expected nil plugins to be ignored, got %d", len(opts.plugins))
	}
}

func TestNewServiceRequiresTransport(t *testing.T) {
	if _, err := NewService(); err != ErrTransportRequired {
		t.Errorf("NewService() error = %v, want ErrTransportRequired", err)
	}
}
