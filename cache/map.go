package cache

import (
	"context"
	"sync"
	"time"
)

// Map holds one CachedValue per key, created on first use with the same
// refresh and retry windows.
type Map[K comparable, V any] struct {
	refresh time.Duration
	retry   time.Duration
	opts    []Option

	values sync.Map // K -> *CachedValue[V]
}

// NewMap creates an empty Map.
func NewMap[K comparable, V any](refresh, retry time.Duration, opts ...Option) *Map[K, V] {
	return &Map[K, V]{refresh: refresh, retry: retry, opts: opts}
}

// Value returns the cached value of key, creating it with supplier if absent.
// supplier is ignored when key already has a value.
func (m *Map[K, V]) Value(key K, supplier Supplier[V]) *CachedValue[V] {
	if v, ok := m.values.Load(key); ok {
		return v.(*CachedValue[V])
	}
	v, _ := m.values.LoadOrStore(key, New(m.refresh, m.retry, supplier, m.opts...))
	return v.(*CachedValue[V])
}

// Get is Value(key, supplier).Get(ctx).
func (m *Map[K, V]) Get(ctx context.Context, key K, supplier Supplier[V]) (V, error) {
	return m.Value(key, supplier).Get(ctx)
}

// CleanStale removes every stale value and returns how many were removed.
func (m *Map[K, V]) CleanStale() int {
	removed := 0
	m.values.Range(func(k, v interface{}) bool {
		if v.(*CachedValue[V]).IsStale() {
			m.values.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of keys held.
func (m *Map[K, V]) Len() int {
	n := 0
	m.values.Range(func(interface{}, interface{}) bool {
		n++
		return true
	})
	return n
}
