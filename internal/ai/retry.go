package ai

import (
	"context"
	"time"
)

// RetryPolicy bounds the retry loop around engine calls. The delay
// before attempt n (counting from zero) is BaseDelay << (n-1), i.e.
// exponential backoff starting at BaseDelay after the first failure.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy matches the engine contract: up to 5 attempts,
// 1s/2s/4s/8s backoff, retrying only transient failure classes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Retryable:   IsTransient,
	}
}

// Do runs fn until it succeeds, fails non-transiently, runs out of
// attempts, or the context is done. Backoff sleeps are
// context-aware and never block anything beyond the calling goroutine.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << (attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		lastErr = err
	}

	return lastErr
}
