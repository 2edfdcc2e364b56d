package async_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("delivers the result", func(t *testing.T) {
		t.Parallel()

		fut := async.Async(context.Background(), 42, func(_ context.Context, v int) (string, error) {
			return strconv.Itoa(v), nil
		})

		got, err := fut.Await()
		require.NoError(t, err)
		assert.Equal(t, "42", got)
		assert.True(t, fut.IsComplete())
	})

	t.Run("delivers the error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		fut := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			return 0, boom
		})

		_, err := fut.Await()
		assert.ErrorIs(t, err, boom)
	})

	t.Run("skips the work when the context is already canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32
		fut := async.Async(ctx, 0, func(context.Context, int) (int, error) {
			calls.Add(1)
			return 1, nil
		})

		_, err := fut.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls.Load())
	})
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	fut := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		<-block
		return 7, nil
	})

	_, err := fut.AwaitWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)
	assert.False(t, fut.IsComplete())

	close(block)
	got, err := fut.AwaitWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	t.Run("collects results in launch order", func(t *testing.T) {
		t.Parallel()

		futures := make([]*async.Future[int], 5)
		for i := range futures {
			futures[i] = async.Async(context.Background(), i, func(_ context.Context, v int) (int, error) {
				time.Sleep(time.Duration(5-v) * time.Millisecond)
				return v * 10, nil
			})
		}

		got, err := async.WaitAll(futures...)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 10, 20, 30, 40}, got)
	})

	t.Run("surfaces the first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		ok := async.Async(context.Background(), 1, func(_ context.Context, v int) (int, error) { return v, nil })
		bad := async.Async(context.Background(), 2, func(context.Context, int) (int, error) { return 0, boom })

		_, err := async.WaitAll(ok, bad)
		assert.ErrorIs(t, err, boom)
	})
}
