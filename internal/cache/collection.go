// Package cache holds the building blocks shared by every collection
// service: a wholesale-replaced list, a per-key in-flight set and the
// dispatch-then-refresh contract for mutations.
package cache

import (
	"context"
	"sync"
)

// Collection is a locally materialized copy of one server-owned list.
// Contents are only ever replaced wholesale.
type Collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
	epoch  uint64
}

// Snapshot returns a copy of the current items
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of cached items
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loaded reports whether a refresh has installed contents since the last reset
func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Find returns the first item matching pred
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Epoch identifies the current generation; Reset advances it
func (c *Collection[T]) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// ReplaceIf installs items only if no Reset happened since epoch was read.
// It reports whether the items were installed.
func (c *Collection[T]) ReplaceIf(epoch uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.items = append([]T(nil), items...)
	c.loaded = true
	return true
}

// Reset empties the collection and invalidates in-flight refreshes
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.loaded = false
	c.epoch++
}

// Refresh pulls the full collection with fetch and replaces the contents.
// A result that arrives after a Reset is dropped. On error the cached
// contents are left untouched.
func Refresh[T any](ctx context.Context, c *Collection[T], fetch func(ctx context.Context) ([]T, error)) (installed bool, err error) {
	epoch := c.Epoch()
	items, err := fetch(ctx)
	if err != nil {
		return false, err
	}
	return c.ReplaceIf(epoch, items), nil
}
