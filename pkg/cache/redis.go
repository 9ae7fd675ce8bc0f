package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect creates a Redis client and verifies the connection with a ping.
func Connect(host, port, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	zap.L().Info("Redis connected", zap.String("addr", fmt.Sprintf("%s:%s", host, port)))
	return client, nil
}

// Redis is a JSON-encoded cache shared between processes.
type Redis[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis stores values under prefix+key. A zero ttl never expires.
func NewRedis[V any](client *redis.Client, prefix string, ttl time.Duration) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var value V
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false
	}
	if err != nil {
		zap.L().Warn("redis cache get error", zap.String("key", r.prefix+key), zap.Error(err))
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		zap.L().Warn("redis cache decode error", zap.String("key", r.prefix+key), zap.Error(err))
		return value, false
	}
	return value, true
}

func (r *Redis[V]) Put(ctx context.Context, key string, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("redis cache encode error", zap.String("key", r.prefix+key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		zap.L().Warn("redis cache set error", zap.String("key", r.prefix+key), zap.Error(err))
	}
}

func (r *Redis[V]) Invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		zap.L().Warn("redis cache invalidate error", zap.String("key", r.prefix+key), zap.Error(err))
		return
	}
	zap.L().Debug("redis cache invalidated", zap.String("key", r.prefix+key))
}

// InvalidatePrefix removes every key under the cache prefix.
func (r *Redis[V]) InvalidatePrefix(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			zap.L().Warn("redis cache scan error", zap.String("prefix", r.prefix), zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				zap.L().Warn("redis cache bulk delete error", zap.Error(err))
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
