// Package cache holds in-process caches for read-heavy notification data.
package cache

import (
	"sync"
	"time"

	"contexta/internal/infra/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// UnreadCountCache keeps per-user unread counts for a short TTL. Writers
// invalidate the entry instead of updating it. Each invalidation moves the
// user's generation, and Set drops counts read under an older generation.
type UnreadCountCache struct {
	counts *expirable.LRU[string, int]

	mu          sync.Mutex
	generations *lru.Cache[string, uint64]
	next        uint64
}

func NewUnreadCountCache(size int, ttl time.Duration) *UnreadCountCache {
	if size <= 0 {
		size = 1
	}
	// lru.New only fails for a non-positive size.
	generations, _ := lru.New[string, uint64](size)
	return &UnreadCountCache{
		counts:      expirable.NewLRU[string, int](size, nil, ttl),
		generations: generations,
	}
}

func (c *UnreadCountCache) Get(userID string) (int, bool) {
	count, ok := c.counts.Get(userID)
	metrics.RecordUnreadCache(ok)
	return count, ok
}

// Generation returns the token a reader passes to Set after loading a count.
func (c *UnreadCountCache) Generation(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen, _ := c.generations.Peek(userID)
	return gen
}

// Set stores count unless userID was invalidated after generation was taken.
func (c *UnreadCountCache) Set(userID string, count int, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, _ := c.generations.Peek(userID); current != generation {
		return
	}
	c.counts.Add(userID, count)
}

func (c *UnreadCountCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.generations.Add(userID, c.next)
	c.counts.Remove(userID)
}

// Len reports the number of live entries.
func (c *UnreadCountCache) Len() int {
	return c.counts.Len()
}
