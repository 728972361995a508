package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationCacheEvictsOldestOnOverflow(t *testing.T) {
	c := New(3)

	c.Put("1", Entry{ChunkID: "1", Addresses: []string{"a"}})
	c.Put("2", Entry{ChunkID: "2", Addresses: []string{"b"}})
	c.Put("3", Entry{ChunkID: "3", Addresses: []string{"c"}})

	_, ok := c.Get("1")
	require.True(t, ok, "id 1 refreshes to most-recently-used")

	c.Put("4", Entry{ChunkID: "4", Addresses: []string{"d"}})

	_, ok = c.Get("1")
	assert.True(t, ok, "id 1 should survive the eviction since it was refreshed")

	_, ok = c.Get("2")
	assert.False(t, ok, "id 2 should have been evicted as the next-oldest")

	_, ok = c.Get("3")
	assert.True(t, ok)
	_, ok = c.Get("4")
	assert.True(t, ok)

	assert.LessOrEqual(t, c.Size(), 3)
}

func TestLocationCacheCapacityIsClampedToOne(t *testing.T) {
	c := New(0)
	c.Put("x", Entry{ChunkID: "x"})
	c.Put("y", Entry{ChunkID: "y"})

	assert.Equal(t, 1, c.Size())
	_, ok := c.Get("x")
	assert.False(t, ok)
	_, ok = c.Get("y")
	assert.True(t, ok)
}

func TestLocationCacheRemoveOfAbsentIDIsNoOp(t *testing.T) {
	c := New(4)
	c.Put("a", Entry{ChunkID: "a"})

	c.Remove("does-not-exist")

	assert.Equal(t, 1, c.Size())
	c.Remove("a")
	assert.Equal(t, 0, c.Size())
}

func TestLocationCacheGetReturnsIndependentCopy(t *testing.T) {
	c := New(2)
	c.Put("a", Entry{ChunkID: "a", Addresses: []string{"node-1"}})

	got, ok := c.Get("a")
	require.True(t, ok)
	got.Addresses[0] = "mutated"

	got2, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "node-1", got2.Addresses[0])
}

func TestLocationCacheClear(t *testing.T) {
	c := New(4)
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("%d", i), Entry{ChunkID: fmt.Sprintf("%d", i)})
	}
	require.Equal(t, 3, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestLocationCacheConcurrentAccess(t *testing.T) {
	c := New(50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("chunk-%d-%d", i, j%10)
				c.Put(id, Entry{ChunkID: id, Addresses: []string{"node"}})
				c.Get(id)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 50)
}
