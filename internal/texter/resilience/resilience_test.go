package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texter/internal/texter/resilience"
)

var errTransient = errors.New("transient failure")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fastRetry(attempts int) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestCircuitBreaker(t *testing.T) {
	ctx := context.Background()
	cfg := resilience.CircuitBreakerConfig{ErrorThreshold: 2, Timeout: time.Second, SuccessThreshold: 2}

	t.Run("trips after threshold and rejects", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := resilience.NewCircuitBreakerWithClock("test", cfg, clock.Now)

		for range 2 {
			require.ErrorIs(t, cb.Execute(ctx, func() error { return errTransient }), errTransient)
		}
		assert.Equal(t, resilience.StateOpen, cb.GetState())

		called := false
		err := cb.Execute(ctx, func() error { called = true; return nil })
		require.ErrorIs(t, err, resilience.ErrCircuitOpen)
		assert.False(t, called)
	})

	t.Run("success resets failure count", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("test", cfg)

		_ = cb.Execute(ctx, func() error { return errTransient })
		require.NoError(t, cb.Execute(ctx, func() error { return nil }))
		_ = cb.Execute(ctx, func() error { return errTransient })

		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("half-open closes after successes", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := resilience.NewCircuitBreakerWithClock("test", cfg, clock.Now)
		for range 2 {
			_ = cb.Execute(ctx, func() error { return errTransient })
		}

		clock.Advance(2 * time.Second)
		require.NoError(t, cb.Execute(ctx, func() error { return nil }))
		assert.Equal(t, resilience.StateHalfOpen, cb.GetState())

		require.NoError(t, cb.Execute(ctx, func() error { return nil }))
		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := resilience.NewCircuitBreakerWithClock("test", cfg, clock.Now)
		for range 2 {
			_ = cb.Execute(ctx, func() error { return errTransient })
		}

		clock.Advance(2 * time.Second)
		require.Error(t, cb.Execute(ctx, func() error { return errTransient }))
		assert.Equal(t, resilience.StateOpen, cb.GetState())
	})

	t.Run("permanent errors do not trip", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("test", cfg)

		for range 5 {
			err := cb.Execute(ctx, func() error { return fmt.Errorf("bad address: %w", resilience.ErrPermanent) })
			require.ErrorIs(t, err, resilience.ErrPermanent)
		}
		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("half-open admits a single probe", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := resilience.NewCircuitBreakerWithClock("test", cfg, clock.Now)
		for range 2 {
			_ = cb.Execute(ctx, func() error { return errTransient })
		}

		clock.Advance(2 * time.Second)
		require.True(t, cb.AllowRequest(ctx))
		assert.False(t, cb.AllowRequest(ctx))

		cb.RecordResult(ctx, nil)
		assert.True(t, cb.AllowRequest(ctx))
	})

	t.Run("state names", func(t *testing.T) {
		assert.Equal(t, "closed", resilience.StateClosed.String())
		assert.Equal(t, "open", resilience.StateOpen.String())
		assert.Equal(t, "half-open", resilience.StateHalfOpen.String())
		assert.Equal(t, "unknown", resilience.CircuitState(42).String())
	})
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", fastRetry(3)).Execute(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errTransient
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", fastRetry(2)).Execute(ctx, func() error {
			attempts++
			return errTransient
		})

		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 2, attempts)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", fastRetry(5)).Execute(ctx, func() error {
			attempts++
			return fmt.Errorf("bad recipient: %w", resilience.ErrPermanent)
		})

		require.ErrorIs(t, err, resilience.ErrPermanent)
		assert.Equal(t, 1, attempts)
	})

	t.Run("canceled context stops waiting", func(t *testing.T) {
		cfg := fastRetry(3)
		cfg.InitialBackoff = time.Hour
		cctx, cancel := context.WithCancel(ctx)

		err := resilience.NewRetry("test", cfg).Execute(cctx, func() error {
			cancel()
			return errTransient
		})

		require.ErrorIs(t, err, resilience.ErrContextCanceled)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		attempts := 0
		cfg := fastRetry(0)

		_ = resilience.NewRetry("test", cfg).Execute(ctx, func() error {
			attempts++
			return errTransient
		})
		assert.Equal(t, 1, attempts)
	})
}

func TestServiceResilience(t *testing.T) {
	ctx := context.Background()
	cfg := resilience.Config{
		Retry:   fastRetry(2),
		Breaker: resilience.CircuitBreakerConfig{ErrorThreshold: 1, Timeout: time.Hour, SuccessThreshold: 1},
	}

	t.Run("result is returned", func(t *testing.T) {
		svc := resilience.NewServiceResilience("mail", cfg)

		got, err := resilience.ExecuteWithResult(ctx, svc, "op", func(context.Context) (string, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})

	t.Run("exhausted retries count as one breaker failure", func(t *testing.T) {
		svc := resilience.NewServiceResilience("mail", cfg)
		attempts := 0

		err := svc.ExecuteWithResilience(ctx, "op", func(context.Context) error {
			attempts++
			return errTransient
		})
		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, resilience.StateOpen, svc.State())

		err = svc.ExecuteWithResilience(ctx, "op", func(context.Context) error { return nil })
		require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	})
}
