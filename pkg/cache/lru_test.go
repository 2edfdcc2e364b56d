package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/cache"
)

func TestLRU(t *testing.T) {
	t.Parallel()

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRU[string, int](3)
		c.Put("a", 1)
		c.Put("b", 2)

		val, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, val)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("miss returns zero value", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRU[string, int](3)
		val, ok := c.Get("missing")
		assert.False(t, ok)
		assert.Zero(t, val)
	})

	t.Run("put updates existing key without eviction", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRU[string, int](1)
		assert.False(t, c.Put("a", 1))
		assert.False(t, c.Put("a", 2))

		val, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, 2, val)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRU[string, int](2)
		c.Put("a", 1)
		c.Put("b", 2)

		// Touch "a" so "b" becomes the eviction candidate.
		_, _ = c.Get("a")
		assert.True(t, c.Put("c", 3))

		_, ok := c.Get("b")
		assert.False(t, ok)
		_, ok = c.Get("a")
		assert.True(t, ok)
		_, ok = c.Get("c")
		assert.True(t, ok)
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRU[string, int](2)
		c.Put("a", 1)

		assert.True(t, c.Remove("a"))
		assert.False(t, c.Remove("a"))
		assert.Zero(t, c.Len())
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRU[string, int](3)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Clear()

		assert.Zero(t, c.Len())
		_, ok := c.Get("a")
		assert.False(t, ok)
	})

	t.Run("panics on non-positive capacity", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { cache.NewLRU[string, int](0) })
	})
}

func TestLRUOnEvict(t *testing.T) {
	t.Parallel()

	t.Run("fires for capacity evictions", func(t *testing.T) {
		t.Parallel()

		var evicted []string
		c := cache.NewLRU[string, int](2)
		c.OnEvict(func(key string, value int) {
			evicted = append(evicted, fmt.Sprintf("%s=%d", key, value))
		})

		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)

		assert.Equal(t, []string{"a=1"}, evicted)
	})

	t.Run("fires for remove and clear", func(t *testing.T) {
		t.Parallel()

		var evicted []string
		c := cache.NewLRU[string, int](3)
		c.OnEvict(func(key string, value int) {
			evicted = append(evicted, key)
		})

		c.Put("a", 1)
		c.Put("b", 2)
		c.Remove("a")
		c.Clear()

		assert.ElementsMatch(t, []string{"a", "b"}, evicted)
	})
}

func TestLRUConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[int, int](64)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 100 {
				c.Put(g*100+i, i)
				_, _ = c.Get(g*100 + i)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 64, c.Len())
}
