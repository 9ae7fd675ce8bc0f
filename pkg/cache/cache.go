// Package cache provides the get/put/invalidate cache handed to data access
// collaborators. Nothing in this package is process-global: callers construct
// a cache and inject it where it is needed.
package cache

import "context"

// Cache stores values by key. Misses and backend failures both report ok=false.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Put(ctx context.Context, key string, value V)
	Invalidate(ctx context.Context, key string)
}
