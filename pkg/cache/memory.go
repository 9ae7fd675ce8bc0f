package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry[V any] struct {
	value   V
	expires time.Time
}

// Memory is a concurrency-safe in-process cache with an optional TTL.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[V]
	ttl     time.Duration
	now     func() time.Time

	// nextSweep is when Put next purges expired entries.
	nextSweep time.Time
}

// NewMemory returns an empty cache. A zero ttl keeps entries until invalidated.
func NewMemory[V any](ttl time.Duration) *Memory[V] {
	return &Memory[V]{
		entries: make(map[string]memoryEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if entry.expired(m.now()) {
		m.mu.Lock()
		// a Put may have replaced the entry since the read lock was released
		if current, ok := m.entries[key]; ok && current.expired(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return zero, false
	}
	return entry.value, true
}

func (e memoryEntry[V]) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

func (m *Memory[V]) Put(_ context.Context, key string, value V) {
	now := m.now()
	entry := memoryEntry[V]{value: value}
	if m.ttl > 0 {
		entry.expires = now.Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ttl > 0 && !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(m.ttl)
	}
	m.entries[key] = entry
}

// sweep drops expired entries. Keys written once and never read again would
// otherwise stay forever. Callers hold the write lock.
func (m *Memory[V]) sweep(now time.Time) {
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory[V]) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	zap.L().Debug("memory cache invalidated", zap.String("key", key))
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
