// Package cache provides the two expiring caches the screener relies on: a
// process-local memory cache for hot per-instrument data and a file-backed
// store for results that should survive restarts.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultMemoryTTL matches the per-instrument snapshot lifetime.
const DefaultMemoryTTL = 5 * time.Minute

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Keys are case-insensitive; symbols
// arrive in whatever casing the caller used and must hit the same entry.
// Expired entries are purged lazily on read.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[V]
	ttl     time.Duration
}

// NewMemory creates a memory cache with the given default TTL.
// A non-positive ttl falls back to DefaultMemoryTTL.
func NewMemory[V any](ttl time.Duration) *Memory[V] {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &Memory[V]{
		entries: make(map[string]memoryEntry[V]),
		ttl:     ttl,
	}
}

// Get returns the cached value for key if present and unexpired.
func (m *Memory[V]) Get(key string) (V, bool) {
	k := strings.ToUpper(key)

	m.mu.RLock()
	entry, ok := m.entries[k]
	m.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it.
		if cur, ok := m.entries[k]; ok && time.Now().After(cur.expiresAt) {
			delete(m.entries, k)
		}
		m.mu.Unlock()
		var zero V
		return zero, false
	}

	return entry.value, true
}

// Set stores value under key with the cache's default TTL.
func (m *Memory[V]) Set(key string, value V) {
	m.SetWithTTL(key, value, m.ttl)
}

// SetWithTTL stores value under key with an explicit TTL.
func (m *Memory[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[strings.ToUpper(key)] = memoryEntry[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes the entry for key, if any.
func (m *Memory[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, strings.ToUpper(key))
}

// Len reports the number of entries, including not-yet-purged expired ones.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
