// internal/cache/lru.go
//
// Small LRU cache used by the intake page to hold one form session per
// browser.  Safe for concurrent use; good for a few thousand entries.
//
// Entries leave by capacity pressure on Add, by Remove, or by EvictIdle,
// which a caller runs on a ticker to drop entries unused for a TTL.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a least-recently-used cache with an optional eviction hook.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	cap     int
	ll      *list.List
	dict    map[K]*list.Element
	onEvict func(K, V)
	now     func() time.Time
}

type pair[K comparable, V any] struct {
	key  K
	val  V
	seen time.Time
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
// onEvict, when non-nil, runs for every entry dropped by capacity, Remove,
// or EvictIdle, outside the cache lock.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU[K, V]{
		cap:     capacity,
		ll:      list.New(),
		dict:    make(map[K]*list.Element, capacity),
		onEvict: onEvict,
		now:     time.Now,
	}
}

// Get retrieves a value and marks it MRU.
func (c *LRU[K, V]) Get(key K) (val V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, hit := c.dict[key]; hit {
		p := ele.Value.(pair[K, V])
		p.seen = c.now()
		ele.Value = p
		c.ll.MoveToFront(ele)
		return p.val, true
	}
	return val, false
}

// Add inserts or updates a value.
func (c *LRU[K, V]) Add(key K, val V) {
	c.mu.Lock()
	now := c.now()
	if ele, hit := c.dict[key]; hit {
		ele.Value = pair[K, V]{key, val, now}
		c.ll.MoveToFront(ele)
		c.mu.Unlock()
		return
	}
	evicted := c.insert(key, val, now)
	c.mu.Unlock()
	c.evicted(evicted)
}

// GetOrAdd returns the value for key, marking it MRU.  On a miss it stores
// create() and reports added == true.  create runs under the cache lock, so
// concurrent callers for one key all receive the same value; it must not
// call back into the cache.
func (c *LRU[K, V]) GetOrAdd(key K, create func() V) (val V, added bool) {
	c.mu.Lock()
	now := c.now()
	if ele, hit := c.dict[key]; hit {
		p := ele.Value.(pair[K, V])
		p.seen = now
		ele.Value = p
		c.ll.MoveToFront(ele)
		c.mu.Unlock()
		return p.val, false
	}
	val = create()
	evicted := c.insert(key, val, now)
	c.mu.Unlock()
	c.evicted(evicted)
	return val, true
}

// insert pushes a new entry and drops the LRU one when over capacity.
// Caller holds mu and has checked that key is absent.
func (c *LRU[K, V]) insert(key K, val V, now time.Time) *pair[K, V] {
	c.dict[key] = c.ll.PushFront(pair[K, V]{key, val, now})
	if c.ll.Len() <= c.cap {
		return nil
	}
	last := c.ll.Back()
	c.ll.Remove(last)
	p := last.Value.(pair[K, V])
	delete(c.dict, p.key)
	return &p
}

// evicted runs the hook for an entry dropped by insert.  Caller does not
// hold mu.
func (c *LRU[K, V]) evicted(p *pair[K, V]) {
	if p != nil && c.onEvict != nil {
		c.onEvict(p.key, p.val)
	}
}

// Remove drops key if present and reports whether it was.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	ele, hit := c.dict[key]
	if !hit {
		c.mu.Unlock()
		return false
	}
	c.ll.Remove(ele)
	delete(c.dict, key)
	p := ele.Value.(pair[K, V])
	c.mu.Unlock()

	if c.onEvict != nil {
		c.onEvict(p.key, p.val)
	}
	return true
}

// EvictIdle drops every entry not read or written within ttl and returns
// how many it dropped.
func (c *LRU[K, V]) EvictIdle(ttl time.Duration) int {
	cutoff := c.now().Add(-ttl)

	c.mu.Lock()
	var gone []pair[K, V]
	for ele := c.ll.Back(); ele != nil; {
		p := ele.Value.(pair[K, V])
		if !p.seen.Before(cutoff) {
			break // list is ordered by recency
		}
		prev := ele.Prev()
		c.ll.Remove(ele)
		delete(c.dict, p.key)
		gone = append(gone, p)
		ele = prev
	}
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, p := range gone {
			c.onEvict(p.key, p.val)
		}
	}
	return len(gone)
}

// Len reports current size.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
