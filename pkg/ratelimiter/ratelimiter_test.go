package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/ratelimiter"
)

func newMemoryLimiter(t *testing.T, cfg ratelimiter.Config) *ratelimiter.Limiter {
	t.Helper()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	limiter, err := ratelimiter.New(store, cfg)
	require.NoError(t, err)
	return limiter
}

func TestNew(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{Capacity: 0, RefillRate: 1, RefillInterval: time.Second}},
		{"negative refill rate", ratelimiter.Config{Capacity: 1, RefillRate: -1, RefillInterval: time.Second}},
		{"zero interval", ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ratelimiter.New(store, tt.cfg)
			require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(store, ratelimiter.PerMinute(10))
		require.NoError(t, err)
		assert.NotNil(t, limiter)
	})

	t.Run("Must panics on invalid config", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			ratelimiter.Must(store, ratelimiter.Config{})
		})
	})
}

func TestAllow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("allows up to capacity then denies", func(t *testing.T) {
		t.Parallel()

		limiter := newMemoryLimiter(t, ratelimiter.Config{
			Capacity:       3,
			RefillRate:     1,
			RefillInterval: time.Hour,
		})

		for i := range 3 {
			result, err := limiter.Allow(ctx, "client")
			require.NoError(t, err)
			assert.True(t, result.Allowed(), "request %d should pass", i+1)
			assert.Equal(t, 2-i, result.Remaining)
		}

		result, err := limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.False(t, result.Allowed())
		assert.Negative(t, result.Remaining)
		assert.Positive(t, result.RetryAfter())
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		limiter := newMemoryLimiter(t, ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Hour,
		})

		first, err := limiter.Allow(ctx, "a")
		require.NoError(t, err)
		require.True(t, first.Allowed())

		second, err := limiter.Allow(ctx, "b")
		require.NoError(t, err)
		assert.True(t, second.Allowed())
	})

	t.Run("AllowN rejects non-positive counts", func(t *testing.T) {
		t.Parallel()

		limiter := newMemoryLimiter(t, ratelimiter.PerMinute(5))

		_, err := limiter.AllowN(ctx, "client", 0)
		require.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
		_, err = limiter.AllowN(ctx, "client", -2)
		require.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	})

	t.Run("AllowN consumes in bulk", func(t *testing.T) {
		t.Parallel()

		limiter := newMemoryLimiter(t, ratelimiter.Config{
			Capacity:       10,
			RefillRate:     1,
			RefillInterval: time.Hour,
		})

		result, err := limiter.AllowN(ctx, "client", 7)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Remaining)
		assert.Equal(t, 10, result.Limit)
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter := newMemoryLimiter(t, ratelimiter.Config{
		Capacity:       5,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})

	_, err := limiter.AllowN(ctx, "client", 2)
	require.NoError(t, err)

	for range 3 {
		status, err := limiter.Status(ctx, "client")
		require.NoError(t, err)
		assert.Equal(t, 3, status.Remaining, "status must not consume tokens")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter := newMemoryLimiter(t, ratelimiter.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})

	first, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	require.True(t, first.Allowed())

	denied, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	require.False(t, denied.Allowed())

	require.NoError(t, limiter.Reset(ctx, "client"))

	again, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, again.Allowed())
}

func TestConfigPresets(t *testing.T) {
	t.Parallel()

	perMinute := ratelimiter.PerMinute(30)
	assert.Equal(t, 30, perMinute.Capacity)
	assert.Equal(t, 30, perMinute.RefillRate)
	assert.Equal(t, time.Minute, perMinute.RefillInterval)

	perHour := ratelimiter.PerHour(100)
	assert.Equal(t, 100, perHour.Capacity)
	assert.Equal(t, time.Hour, perHour.RefillInterval)
}
