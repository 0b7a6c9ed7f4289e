// Package retry runs a request again after transient failures, waiting
// with exponential backoff between attempts. A failure that carries a
// server back-off hint (see Hinted) waits for the hinted time instead.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Config controls how often and how long Do waits between attempts.
type Config struct {
	// MaxRetries is the number of attempts after the first one
	// (default: 3). Zero runs the function once.
	MaxRetries int

	// InitialBackoff is the wait before the first retry (default: 100ms).
	InitialBackoff time.Duration

	// MaxBackoff caps every wait, hinted or computed (default: 30s).
	MaxBackoff time.Duration

	// Multiplier grows the wait after each retry (default: 2.0).
	Multiplier float64

	// Jitter spreads computed waits by +/- this fraction (default: 0.1).
	// Hinted waits are used as given.
	Jitter float64

	// IsRetryable decides whether a failure is retried.
	// Default: DefaultIsRetryable.
	IsRetryable func(error) bool

	// OnRetry, when set, is called before each wait with the failed
	// attempt number (starting at 1), its error and the wait.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.1,
		IsRetryable:    DefaultIsRetryable,
	}
}

var (
	// ErrNotRetryable marks a failure Do gave up on immediately.
	ErrNotRetryable = errors.New("retry: error is not retryable")

	// ErrMaxRetries is reported when every attempt failed.
	ErrMaxRetries = errors.New("retry: max retries exceeded")

	// ErrContextCanceled is reported when the context ended between attempts.
	ErrContextCanceled = errors.New("retry: context canceled")
)

// Hinted is implemented by errors that carry the server's requested wait,
// such as a throttling response with a back-off time.
type Hinted interface {
	RetryAfter() time.Duration
}

// RetryableFunc is one attempt.
type RetryableFunc func(ctx context.Context) error

// Do calls fn until it succeeds, fails with a non-retryable error, the
// retries are used up or ctx ends. Failures are reported as *RetryError
// wrapping the last error.
func Do(ctx context.Context, cfg Config, fn RetryableFunc) error {
	cfg = applyDefaults(cfg)

	var last error
	for attempt := range cfg.MaxRetries + 1 {
		if err := ctx.Err(); err != nil {
			if last == nil {
				return err
			}
			return &RetryError{Cause: last, Attempts: attempt, Err: ErrContextCanceled}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		last = err
		if !cfg.IsRetryable(err) {
			return &RetryError{Cause: err, Attempts: attempt + 1, Err: ErrNotRetryable}
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := delay(cfg, attempt, err)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &RetryError{Cause: last, Attempts: attempt + 1, Err: ErrContextCanceled}
		case <-timer.C:
		}
	}
	return &RetryError{Cause: last, Attempts: cfg.MaxRetries + 1, Err: ErrMaxRetries}
}

// DoWithResult is Do for functions that return a value.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

// RetryError reports why Do stopped.
type RetryError struct {
	// Cause is the error of the last attempt.
	Cause error
	// Attempts is the number of calls made.
	Attempts int
	// Err is ErrMaxRetries, ErrNotRetryable or ErrContextCanceled.
	Err error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("retry failed after %d attempts (%s): %s", e.Attempts, e.Err, e.Cause)
}

func (e *RetryError) Unwrap() error { return e.Cause }

// Is matches both the stop reason and the cause.
func (e *RetryError) Is(target error) bool {
	return errors.Is(e.Err, target) || errors.Is(e.Cause, target)
}

// delay returns the wait after a failed attempt: the server hint when err
// carries one, the computed backoff otherwise.
func delay(cfg Config, attempt int, err error) time.Duration {
	var h Hinted
	if errors.As(err, &h) {
		if d := h.RetryAfter(); d > 0 {
			return min(d, cfg.MaxBackoff)
		}
	}
	return calculateBackoff(cfg, attempt)
}

// calculateBackoff returns initial * multiplier^attempt, capped and jittered.
func calculateBackoff(cfg Config, attempt int) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	d = math.Min(d, float64(cfg.MaxBackoff))
	if cfg.Jitter > 0 {
		spread := d * cfg.Jitter
		d += (rand.Float64()*2 - 1) * spread
	}
	return time.Duration(d)
}

func applyDefaults(cfg Config) Config {
	def := DefaultConfig()
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = def.Multiplier
	}
	cfg.Jitter = min(max(cfg.Jitter, 0), 1)
	if cfg.IsRetryable == nil {
		cfg.IsRetryable = DefaultIsRetryable
	}
	return cfg
}

// DefaultIsRetryable retries everything except errors marked with
// MarkNotRetryable or wrapping ErrNotRetryable. An error with a
// Retryable() bool method decides for itself.
func DefaultIsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrNotRetryable) {
		return false
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}

// MarkNotRetryable wraps err so DefaultIsRetryable rejects it.
func MarkNotRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &marked{cause: err, retry: false}
}

// MarkRetryable wraps err so DefaultIsRetryable accepts it.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &marked{cause: err, retry: true}
}

type marked struct {
	cause error
	retry bool
}

func (e *marked) Error() string   { return e.cause.Error() }
func (e *marked) Unwrap() error   { return e.cause }
func (e *marked) Retryable() bool { return e.retry }
