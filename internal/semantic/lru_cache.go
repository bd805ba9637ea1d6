package semantic

import (
	"container/list"
	"sync"
)

// LRUCache memoizes tokenizer and stemmer results up to a fixed number of
// entries, evicting the least recently used one. Safe for concurrent use.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[K]*list.Element
	recency  *list.List // front is most recent
	hits     uint64
	misses   uint64
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// CacheStats is a snapshot of cache usage.
type CacheStats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// NewLRUCache holds up to capacity entries; capacity <= 0 means
// DefaultCacheSize.
func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		entries:  make(map[K]*list.Element, capacity),
		recency:  list.New(),
	}
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

func (c *LRUCache[K, V]) lookup(key K) (V, bool) {
	if el, ok := c.entries[key]; ok {
		c.hits++
		c.recency.MoveToFront(el)
		return el.Value.(*lruEntry[K, V]).value, true
	}
	c.misses++
	var zero V
	return zero, false
}

func (c *LRUCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, value)
}

func (c *LRUCache[K, V]) store(key K, value V) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry[K, V]).value = value
		c.recency.MoveToFront(el)
		return
	}
	c.entries[key] = c.recency.PushFront(&lruEntry[K, V]{key: key, value: value})
	if c.recency.Len() > c.capacity {
		last := c.recency.Back()
		c.recency.Remove(last)
		delete(c.entries, last.Value.(*lruEntry[K, V]).key)
	}
}

// GetOrCompute returns the cached value for key, calling compute and
// caching its result on a miss. compute runs outside the lock, so two
// concurrent misses may both compute; the last one wins.
func (c *LRUCache[K, V]) GetOrCompute(key K, compute func(K) V) V {
	c.mu.Lock()
	v, ok := c.lookup(key)
	c.mu.Unlock()
	if ok {
		return v
	}
	v = compute(key)
	c.Set(key, v)
	return v
}

func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element, c.capacity)
	c.recency.Init()
}

func (c *LRUCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

func (c *LRUCache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Size: c.recency.Len(), Hits: c.hits, Misses: c.misses}
}
