package cache

// DefaultCapacity is the default maximum number of entries.
const DefaultCapacity = 256

// LRU is a bounded cache with least-recently-used eviction.
//
// Keys must be comparable values: two independently constructed keys with
// identical contents hit the same entry. A miss is never an error; callers
// construct the value and insert it, evicting the oldest entry when the
// cache is at capacity.
//
// LRU is not safe for concurrent use.
type LRU[K comparable, V any] struct {
	entries  map[K]*lruNode[K, V]
	list     lruList[K, V]
	capacity int

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates an LRU cache holding at most capacity entries.
// If capacity <= 0, DefaultCapacity is used.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{
		entries:  make(map[K]*lruNode[K, V]),
		capacity: capacity,
	}
}

// Get retrieves a value and marks it most recently used.
// Returns (zero, false) on a miss.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	node, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.list.moveToFront(node)
	c.hits++
	return node.value, true
}

// Put stores a value, evicting the least recently used entry if the cache
// is at capacity. Storing an existing key updates its value and recency.
func (c *LRU[K, V]) Put(key K, value V) {
	if node, ok := c.entries[key]; ok {
		node.value = value
		c.list.moveToFront(node)
		return
	}
	for c.list.len >= c.capacity {
		oldest := c.list.removeOldest()
		if oldest == nil {
			break
		}
		delete(c.entries, oldest.key)
		c.evictions++
	}
	node := &lruNode[K, V]{key: key, value: value}
	c.list.pushFront(node)
	c.entries[key] = node
}

// GetOrCreate returns the cached value for key, calling create and caching
// its result on a miss. This is the preferred access path: it keeps the
// hit/miss accounting in one place.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Put(key, v)
	return v
}

// Delete removes an entry. Returns true if it was present.
func (c *LRU[K, V]) Delete(key K) bool {
	node, ok := c.entries[key]
	if !ok {
		return false
	}
	c.list.unlink(node)
	delete(c.entries, key)
	return true
}

// Clear removes all entries. Statistics are preserved.
func (c *LRU[K, V]) Clear() {
	c.entries = make(map[K]*lruNode[K, V])
	c.list.clear()
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int { return c.list.len }

// Capacity returns the maximum number of entries.
func (c *LRU[K, V]) Capacity() int { return c.capacity }

// Stats contains cache counters for monitoring.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries.
	Capacity int
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), or 0 before any access.
	HitRate float64
	// Evictions is the number of entries evicted at capacity.
	Evictions uint64
}

// Stats returns the current counters.
func (c *LRU[K, V]) Stats() Stats {
	var rate float64
	if total := c.hits + c.misses; total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Len:       c.list.len,
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		HitRate:   rate,
		Evictions: c.evictions,
	}
}

// ResetStats zeroes the counters.
func (c *LRU[K, V]) ResetStats() {
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}
