package resolve

import "sync"

// Cache maps set IDs to their classified results for the lifetime of one
// run. Write-once per key, read-through, no eviction: two events referencing
// the same set ID cost one remote call.
//
// The pipeline is single-threaded, but the cache is guarded anyway so a
// future parallel resolver only has to serialize the rating updates.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]SetResult
	hits    int
}

// NewCache creates an empty set cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[int64]SetResult)}
}

// Get retrieves a cached result and records the hit.
func (c *Cache) Get(setID int64) (SetResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[setID]
	if ok {
		c.hits++
	}
	return res, ok
}

// Put stores a result. The first write for a key wins; later writes are
// ignored so a populated key is never invalidated within a run.
func (c *Cache) Put(setID int64, res SetResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[setID]; exists {
		return
	}
	c.entries[setID] = res
}

// Len returns the number of cached set results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Hits returns how many lookups were served from the cache.
func (c *Cache) Hits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}
