package audit

import (
	"container/list"
	"sync"

	"uncheckedscan/internal/engine/parser"
	"uncheckedscan/internal/shared/observability"
)

// DeclarationCache is a thread-safe, capacity-bounded LRU of parsed files keyed
// by path. Cached files are shared read-only between the collection and
// resolution phases. A nil *DeclarationCache is a valid, always-missing cache.
type DeclarationCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most-recently used
}

type cacheEntry struct {
	path string
	file *parser.File
}

// NewDeclarationCache returns nil when capacity <= 0, disabling caching.
func NewDeclarationCache(capacity int) *DeclarationCache {
	if capacity <= 0 {
		return nil
	}
	return &DeclarationCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached file for path. A hit moves the entry to the front.
func (c *DeclarationCache) Get(path string) (*parser.File, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[path]
	if !ok {
		observability.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	observability.CacheLookupsTotal.WithLabelValues("hit").Inc()
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).file, true
}

// Put inserts or replaces the file for path, evicting the least-recently-used
// entry when at capacity.
func (c *DeclarationCache) Put(path string, file *parser.File) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[path]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).file = file
		return
	}
	if c.order.Len() >= c.capacity {
		if back := c.order.Back(); back != nil {
			c.order.Remove(back)
			delete(c.items, back.Value.(*cacheEntry).path)
		}
	}
	c.items[path] = c.order.PushFront(&cacheEntry{path: path, file: file})
}

func (c *DeclarationCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
