package compare

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timeoutErr is a transport-style error that self-classifies as a timeout.
type timeoutErr struct{ timeout bool }

func (e *timeoutErr) Error() string { return "fetch deadline exceeded" }
func (e *timeoutErr) Timeout() bool { return e.timeout }

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"context deadline", context.DeadlineExceeded, true},
		{"wrapped context deadline", errors.Join(errors.New("fetch"), context.DeadlineExceeded), true},
		{"timeout-classified transport error", &timeoutErr{timeout: true}, true},
		{"non-timeout transport error", &timeoutErr{timeout: false}, false},
		{"generic error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeout(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	quick := RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond, IsRetryable: IsTimeout}

	t.Run("success on first attempt", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), quick, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("timeout retried within budget", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), quick, func(context.Context) error {
			calls++
			if calls == 1 {
				return &timeoutErr{timeout: true}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("budget exhausted returns last error", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), quick, func(context.Context) error {
			calls++
			return &timeoutErr{timeout: true}
		})
		require.Error(t, err)
		assert.Equal(t, 2, calls)
		assert.True(t, IsTimeout(err))
	})

	t.Run("permanent error not retried", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), quick, func(context.Context) error {
			calls++
			return errors.New("malformed payload")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("on-retry hook observes each retry", func(t *testing.T) {
		policy := quick
		policy.MaxAttempts = 3
		var attempts []int
		policy.OnRetry = func(attempt int, err error) {
			attempts = append(attempts, attempt)
		}
		_ = WithRetry(context.Background(), policy, func(context.Context) error {
			return &timeoutErr{timeout: true}
		})
		assert.Equal(t, []int{1, 2}, attempts)
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		policy := quick
		policy.Delay = time.Minute
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := WithRetry(ctx, policy, func(context.Context) error {
			return &timeoutErr{timeout: true}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), RetryPolicy{}, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}
