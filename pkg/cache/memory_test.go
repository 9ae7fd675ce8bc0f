package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemory_PutGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory[[]int](0)

	_, ok := c.Get(ctx, "ads")
	assert.False(t, ok)

	c.Put(ctx, "ads", []int{1, 2})
	got, ok := c.Get(ctx, "ads")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, got)

	c.Invalidate(ctx, "ads")
	_, ok = c.Get(ctx, "ads")
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Put(ctx, "k", "v")
	now = now.Add(59 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemory_PutSweepsUnreadExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory[int](time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < 10000; i++ {
		c.Put(ctx, fmt.Sprintf("view-%d", i), i)
	}
	assert.Equal(t, 10000, c.Len())

	now = now.Add(time.Hour)
	c.Put(ctx, "fresh", 1)

	assert.Equal(t, 1, c.Len())
	got, ok := c.Get(ctx, "fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestMemory_SweepKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Put(ctx, "old", "a")
	now = now.Add(30 * time.Second)
	c.Put(ctx, "young", "b")
	now = now.Add(45 * time.Second)
	c.Put(ctx, "new", "c")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, "young")
	assert.True(t, ok)
}

func TestMemory_GetKeepsValueRewrittenAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Put(ctx, "k", "stale")
	now = now.Add(2 * time.Minute)

	// a writer lands between the expired read and the delete
	rewritten := false
	c.now = func() time.Time {
		if !rewritten {
			rewritten = true
			c.Put(ctx, "k", "fresh")
		}
		return now
	}

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "fresh", got)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemory[int](0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put(ctx, "shared", i)
			c.Get(ctx, "shared")
			if i%10 == 0 {
				c.Invalidate(ctx, "shared")
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 1)
}

var _ Cache[int] = (*Memory[int])(nil)
var _ Cache[int] = (*Redis[int])(nil)
