package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedisClient skips the test when no Redis is reachable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "test:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type cachedAd struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func TestRedis_PutGetInvalidate(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()
	c := NewRedis[cachedAd](client, "test:ad:", time.Minute)

	_, ok := c.Get(ctx, "1")
	assert.False(t, ok)

	c.Put(ctx, "1", cachedAd{ID: 1, Title: "Fahrrad"})
	got, ok := c.Get(ctx, "1")
	require.True(t, ok)
	assert.Equal(t, "Fahrrad", got.Title)

	c.Invalidate(ctx, "1")
	_, ok = c.Get(ctx, "1")
	assert.False(t, ok)
}

func TestRedis_InvalidatePrefix(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()
	c := NewRedis[int](client, "test:count:", 0)

	c.Put(ctx, "a", 1)
	c.Put(ctx, "b", 2)
	c.InvalidatePrefix(ctx)

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	assert.False(t, okA)
	assert.False(t, okB)
}
