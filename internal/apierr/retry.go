package apierr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds a retried operation: at most 1+MaxRetries attempts,
// with waits growing from BaseDelay and leveling off at MaxDelay.
//
// Out-of-range values are normalized before use: a negative MaxRetries
// means a single attempt, a non-positive BaseDelay becomes 1ms, and a
// non-positive MaxDelay collapses to BaseDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// normalize clamps out-of-range fields to usable values.
func (c *RetryConfig) normalize() {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
}

// RetryWithBackoff runs fn until it succeeds, the error is declared
// non-retryable, cfg.MaxRetries retries are used up, or ctx ends. A nil
// shouldRetry means Retryable. On failure the zero T comes back with
// the last error; exhaustion wraps it so callers can tell a spent
// budget from a first-try rejection.
//
// Waits between attempts come from cenkalti/backoff's jittered
// exponential schedule, seeded from cfg.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()
	if shouldRetry == nil {
		shouldRetry = Retryable
	}

	op := func() (T, error) {
		v, err := fn()
		if err != nil && !shouldRetry(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.MaxInterval = cfg.MaxDelay
	bo.MaxElapsedTime = 0 // attempts are bounded by MaxRetries, not wall clock

	v, err := backoff.RetryWithData(op,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.MaxRetries)), ctx))

	var zero T
	switch {
	case err == nil:
		return v, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return zero, err
	case !shouldRetry(err):
		return zero, err
	default:
		return zero, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, err)
	}
}
