// Package cache provides a bounded in-process cache with LRU eviction and
// per-entry TTL, used to keep completed search responses close to the caller.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats reports the observable shape of a cache.
type Stats struct {
	Size     int           `json:"size"`
	Capacity int           `json:"capacity"`
	TTL      time.Duration `json:"ttl"`
}

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// Cache is a bounded string-keyed cache. Entries are evicted least-recently-used
// first once capacity is exceeded; entries older than the TTL are treated as
// absent even before they are physically removed. A miss is a normal return
// value, never an error.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = most recently used
	items    map[string]*list.Element
	now      func() time.Time
}

// New creates a cache with the given capacity and TTL. A non-positive capacity
// defaults to 1; a non-positive TTL means entries never expire.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Set inserts or overwrites the value for key and marks it most recently used,
// evicting the least-recently-used entry if capacity is exceeded.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.insertedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry[V]{key: key, value: value, insertedAt: c.now()})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Get returns the live value for key and refreshes its recency. The second
// return value is false for keys that are missing or past their TTL; an
// expired entry is removed rather than resurrected.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[V])
	if c.expired(ent) {
		c.removeElement(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return ent.value, true
}

// Has reports whether a live entry exists for key without touching recency.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	return !c.expired(el.Value.(*entry[V]))
}

// Delete removes the entry for key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Stats returns the current entry count and the configured bounds.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{Size: c.order.Len(), Capacity: c.capacity, TTL: c.ttl}
}

func (c *Cache[V]) expired(ent *entry[V]) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(ent.insertedAt) > c.ttl
}

func (c *Cache[V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
