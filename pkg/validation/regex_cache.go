package validation

import (
	"container/list"
	"sync"
	"time"

	"mercator-hq/nebula/pkg/value"
)

// RegexCache holds compiled patterns keyed by pattern text with LRU
// eviction. Compilation errors are not cached.
type RegexCache struct {
	// items maps pattern text to its element in order
	items map[string]*list.Element

	// order holds entries from most to least recently used
	order *list.List

	// timeout is applied to every compiled pattern
	timeout time.Duration

	// maxEntries is the maximum number of patterns kept
	maxEntries int

	hits, misses, evictions uint64

	mu sync.Mutex
}

type regexEntry struct {
	pattern string
	re      *value.Regex
}

// RegexCacheStats is a point-in-time view of cache counters.
type RegexCacheStats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewRegexCache creates a cache keeping at most maxEntries patterns, each
// compiled with the given match timeout.
func NewRegexCache(maxEntries int, timeout time.Duration) *RegexCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &RegexCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		timeout:    timeout,
		maxEntries: maxEntries,
	}
}

// Get returns the compiled pattern, compiling and storing it on a miss.
func (c *RegexCache) Get(pattern string) (*value.Regex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[pattern]; ok {
		c.order.MoveToFront(elem)
		c.hits++
		return elem.Value.(*regexEntry).re, nil
	}
	c.misses++

	re, err := value.CompileRegex(pattern, c.timeout)
	if err != nil {
		return nil, err
	}

	c.items[pattern] = c.order.PushFront(&regexEntry{pattern: pattern, re: re})
	if c.order.Len() > c.maxEntries {
		c.evictOldest()
	}
	return re, nil
}

// Must be called with mu held.
func (c *RegexCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*regexEntry).pattern)
	c.evictions++
}

// Stats returns the current counters.
func (c *RegexCache) Stats() RegexCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RegexCacheStats{
		Entries:   c.order.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Size returns the number of cached patterns.
func (c *RegexCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
