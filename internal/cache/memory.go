package cache

import (
	"context"
	"sync"
	"time"

	"github.com/support-insights/backend/internal/models"
)

// MemoryCache is the process-local fallback when no Redis address is
// configured. Entries expire lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	dataset   models.Dataset
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, domain models.Domain, dr models.DateRange) (models.Dataset, bool) {
	key := Key(domain, dr)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return models.Dataset{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return models.Dataset{}, false
	}
	return entry.dataset, true
}

func (c *MemoryCache) Set(_ context.Context, domain models.Domain, dr models.DateRange, ds models.Dataset) {
	c.mu.Lock()
	c.entries[Key(domain, dr)] = memoryEntry{dataset: ds, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Flush(context.Context) error {
	c.mu.Lock()
	c.entries = map[string]memoryEntry{}
	c.mu.Unlock()
	return nil
}
