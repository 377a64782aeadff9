// Package cache provides a small in-memory LRU with per-entry TTL,
// used to avoid re-asking the model the same analysis question over
// an unchanged record list.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a fixed-capacity cache with TTL and least-recently-used
// eviction. Safe for concurrent use.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// NewLRU creates a cache holding at most maxSize entries, each valid
// for ttl after its last Set.
func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key, refreshing its TTL and evicting the
// least recently used entry when the cache is full.
func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, expiresAt: time.Now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(e)
	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Delete removes key from the cache if present.
func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Size returns the current number of entries, expired ones included.
func (c *LRU[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanExpired drops every expired entry and reports how many were
// removed.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var stale []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.remove(elem)
	}
	return len(stale)
}

func (c *LRU[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}
