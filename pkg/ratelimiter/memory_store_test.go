package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/ratelimiter"
)

func TestMemoryStoreConsumeTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("new bucket starts at capacity", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		cfg := ratelimiter.Config{Capacity: 10, RefillRate: 1, RefillInterval: time.Hour}
		remaining, resetAt, err := store.ConsumeTokens(ctx, "key", 4, cfg)
		require.NoError(t, err)
		assert.Equal(t, 6, remaining)
		assert.WithinDuration(t, time.Now().Add(time.Hour), resetAt, time.Minute)
	})

	t.Run("bucket can go negative", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		cfg := ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour}
		_, _, err := store.ConsumeTokens(ctx, "key", 2, cfg)
		require.NoError(t, err)

		remaining, _, err := store.ConsumeTokens(ctx, "key", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, -1, remaining)
	})

	t.Run("refills after the interval elapses", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		cfg := ratelimiter.Config{Capacity: 2, RefillRate: 2, RefillInterval: 50 * time.Millisecond}
		remaining, _, err := store.ConsumeTokens(ctx, "key", 2, cfg)
		require.NoError(t, err)
		require.Equal(t, 0, remaining)

		time.Sleep(120 * time.Millisecond)

		remaining, _, err = store.ConsumeTokens(ctx, "key", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining, "bucket should be full again after refill")
	})

	t.Run("refill never exceeds capacity", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		cfg := ratelimiter.Config{Capacity: 3, RefillRate: 10, RefillInterval: 10 * time.Millisecond}
		_, _, err := store.ConsumeTokens(ctx, "key", 1, cfg)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		remaining, _, err := store.ConsumeTokens(ctx, "key", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 3, remaining)
	})

	t.Run("zero tokens reports state without consuming", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		cfg := ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Hour}
		remaining, _, err := store.ConsumeTokens(ctx, "key", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 5, remaining)
	})
}

func TestMemoryStoreReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	cfg := ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour}
	_, _, err := store.ConsumeTokens(ctx, "key", 1, cfg)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx, "key"))

	remaining, _, err := store.ConsumeTokens(ctx, "key", 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "reset should restore a fresh bucket")
}

func TestMemoryStoreClose(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore()
	store.Close()
	assert.NotPanics(t, store.Close)
}

func TestMemoryStoreConcurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	cfg := ratelimiter.Config{Capacity: 100, RefillRate: 1, RefillInterval: time.Hour}

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.ConsumeTokens(ctx, "shared", 1, cfg)
		}()
	}
	wg.Wait()

	remaining, _, err := store.ConsumeTokens(ctx, "shared", 0, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "exactly 100 tokens should have been consumed")
}
