package report

import (
	"container/list"
	"sync"
	"time"

	"github.com/cleared-dev/fincore/internal/model"
)

// Cache is an LRU snapshot cache with TTL. Invalidation is lazy: keys embed
// the store and index versions, so an entry built against an older version is
// simply never requested again and ages out by LRU or TTL. The cache is
// rebuildable from the ledger and safe to discard at any time.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List

	hits   uint64
	misses uint64
}

type cacheItem struct {
	key       string
	snap      model.ReportSnapshot
	expiresAt time.Time
}

// NewCache creates a cache holding at most maxSize snapshots for up to ttl.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the cached snapshot for key, if present and fresh.
func (c *Cache) Get(key string) (model.ReportSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return model.ReportSnapshot{}, false
	}
	item := elem.Value.(*cacheItem)
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return model.ReportSnapshot{}, false
	}
	c.lru.MoveToFront(elem)
	c.hits++
	return item.snap, true
}

// Set stores a snapshot under key, evicting the least recently used entry
// when over capacity.
func (c *Cache) Set(key string, snap model.ReportSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem{key: key, snap: snap, expiresAt: time.Now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// CleanExpired sweeps expired entries and returns how many were removed.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the number of cached snapshots.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cache) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}
