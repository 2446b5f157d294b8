// Package lru provides a size-bounded, optionally expiring cache.
package lru

import (
	"container/list"
	"sync"
	"time"
)

// Config contains configuration options for a cache
type Config struct {
	// MaxSize is the maximum number of entries to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached entries. 0 means no expiration.
	TTL time.Duration
}

// Cache is a least-recently-used cache safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	order   *list.List
	config  Config
	onEvict func(K, V)
	now     func() time.Time
}

type entry[K comparable, V any] struct {
	key     K
	value   V
	expiry  time.Time
	element *list.Element
}

// New creates a cache with the given configuration
func New[K comparable, V any](config Config) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[K, V]),
		order:   list.New(),
		config:  config,
		now:     time.Now,
	}
}

// OnEvict registers a function called with every entry that leaves the cache.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) *Cache[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
	return c
}

// Enabled reports whether the cache stores anything at all.
func (c *Cache[K, V]) Enabled() bool {
	return c != nil && c.config.MaxSize > 0
}

// Get retrieves a value and marks it as recently used
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		c.removeLocked(e)
		return zero, false
	}
	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set adds or replaces a value, evicting the least recently used entry when full
func (c *Cache[K, V]) Set(key K, value V) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiry time.Time
	if c.config.TTL > 0 {
		expiry = c.now().Add(c.config.TTL)
	}

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiry = expiry
		c.order.MoveToFront(e.element)
		return
	}

	for c.order.Len() >= c.config.MaxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*entry[K, V]))
	}

	e := &entry[K, V]{key: key, value: value, expiry: expiry}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result on a miss. Errors are not cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Remove deletes a single entry
func (c *Cache[K, V]) Remove(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.removeLocked(e)
	}
}

// Clear removes all entries
func (c *Cache[K, V]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onEvict != nil {
		for k, e := range c.entries {
			c.onEvict(k, e.value)
		}
	}
	c.entries = make(map[K]*entry[K, V])
	c.order = list.New()
}

// Len returns the current number of entries, expired ones included
func (c *Cache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[K, V]) expired(e *entry[K, V]) bool {
	return c.config.TTL > 0 && c.now().After(e.expiry)
}

func (c *Cache[K, V]) removeLocked(e *entry[K, V]) {
	delete(c.entries, e.key)
	c.order.Remove(e.element)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}
