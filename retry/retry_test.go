package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	cfg.Jitter = 0
	return cfg
}

func TestDo(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		err          error
		maxRetries   int
		wantAttempts int
		wantErr      error
	}{
		{name: "success first try", failures: 0, maxRetries: 3, wantAttempts: 1},
		{name: "success after retries", failures: 2, err: errTransient, maxRetries: 3, wantAttempts: 3},
		{name: "exhausted", failures: 10, err: errTransient, maxRetries: 2, wantAttempts: 3, wantErr: ErrMaxRetries},
		{name: "not retryable", failures: 10, err: MarkNotRetryable(errTransient), maxRetries: 3, wantAttempts: 1, wantErr: ErrNotRetryable},
		{name: "no retries", failures: 10, err: errTransient, maxRetries: 0, wantAttempts: 1, wantErr: ErrMaxRetries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastConfig()
			cfg.MaxRetries = tt.maxRetries
			attempts := 0
			err := Do(context.Background(), cfg, func(context.Context) error {
				attempts++
				if attempts <= tt.failures {
					return tt.err
				}
				return nil
			})
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Do() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Do() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, errTransient) {
				t.Errorf("Do() error = %v, want cause %v", err, errTransient)
			}
		})
	}
}

func TestDoOnRetry(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2
	var seen []int
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		if !errors.Is(err, errTransient) {
			t.Errorf("OnRetry err = %v", err)
		}
		if backoff <= 0 {
			t.Errorf("OnRetry backoff = %v", backoff)
		}
		seen = append(seen, attempt)
	}
	_ = Do(context.Background(), cfg, func(context.Context) error { return errTransient })
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestDoContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	err := Do(ctx, cfg, func(context.Context) error {
		cancel()
		return errTransient
	})
	if !errors.Is(err, ErrContextCanceled) {
		t.Fatalf("Do() error = %v, want ErrContextCanceled", err)
	}
	var re *RetryError
	if !errors.As(err, &re) || re.Attempts != 1 {
		t.Errorf("RetryError = %+v, want 1 attempt", re)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", MarkRetryable(errTransient)
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("DoWithResult() = %q, %v", got, err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond, Multiplier: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Millisecond},
		{1, 20 * time.Millisecond},
		{2, 40 * time.Millisecond},
		{3, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := calculateBackoff(cfg, tt.attempt); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDefaultIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errTransient, want: true},
		{name: "marked not retryable", err: MarkNotRetryable(errTransient), want: false},
		{name: "marked retryable", err: MarkRetryable(errTransient), want: true},
		{name: "sentinel", err: ErrNotRetryable, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultIsRetryable(tt.err); got != tt.want {
				t.Errorf("DefaultIsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type hintedErr time.Duration

func (e hintedErr) Error() string             { return "throttled" }
func (e hintedErr) RetryAfter() time.Duration { return time.Duration(e) }

func TestDelay(t *testing.T) {
	cfg := Config{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond, Multiplier: 2}
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{name: "no hint", err: errTransient, want: 20 * time.Millisecond},
		{name: "hint", err: hintedErr(35 * time.Millisecond), want: 35 * time.Millisecond},
		{name: "wrapped hint", err: fmt.Errorf("get: %w", hintedErr(5*time.Millisecond)), want: 5 * time.Millisecond},
		{name: "hint above cap", err: hintedErr(time.Minute), want: 50 * time.Millisecond},
		{name: "zero hint", err: hintedErr(0), want: 20 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := delay(cfg, 1, tt.err); got != tt.want {
				t.Errorf("delay() = %v, want %v", got, tt.want)
			}
		})
	}
}
