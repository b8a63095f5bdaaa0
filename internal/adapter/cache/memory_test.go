package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_BasicReadWrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemory[string](3)

	require.NoError(t, c.Write(ctx, "a", "A"))
	require.NoError(t, c.Write(ctx, "b", "B"))

	v, ok, err := c.Read(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok, err = c.Read(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Eviction(t *testing.T) {
	c := NewMemory[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
	assert.Equal(t, 2, c.Len())
}

func TestMemory_AccessPromotesEntry(t *testing.T) {
	c := NewMemory[string](2)

	c.put("a", "A")
	c.put("b", "B")

	c.get("a")

	// "b" is now least recently used.
	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestMemory_OverwriteKeepsLatest(t *testing.T) {
	c := NewMemory[int](2)

	c.put("a", 1)
	c.put("a", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestMemory_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	c := NewMemory[int](4)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Write(ctx, "weather", i)
			_, _, _ = c.Read(ctx, "weather")
		}()
	}
	wg.Wait()

	_, ok, err := c.Read(ctx, "weather")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}
