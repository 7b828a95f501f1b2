package compare

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy is a stateless description of how fetch failures are retried.
// It replaces ad hoc closure counters at call sites: the same value can be
// shared by every fetch without coordination.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget, first try included.
	MaxAttempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
	// IsRetryable classifies an error as transient. Non-retryable errors
	// end the attempt loop immediately.
	IsRetryable func(error) bool
	// OnRetry, when set, observes each retry that is about to happen.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy retries timeout-classified failures once more after
// the initial attempt. Non-timeout failures are permanent per-entity errors
// and are never retried.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Delay:       250 * time.Millisecond,
		IsRetryable: IsTimeout,
	}
}

// timeouter matches net.Error and any transport error that self-classifies.
type timeouter interface {
	Timeout() bool
}

// IsTimeout reports whether err is timeout-classified: a context deadline,
// or any wrapped error exposing Timeout() true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te timeouter
	return errors.As(err, &te) && te.Timeout()
}

// WithRetry runs fn under the policy, returning the first success or the
// last error once the budget is exhausted or the error is classified
// permanent. Context cancellation aborts the wait between attempts.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if policy.IsRetryable == nil || !policy.IsRetryable(lastErr) || attempt == attempts {
			return lastErr
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, lastErr)
		}
		select {
		case <-time.After(policy.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
