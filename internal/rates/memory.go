package rates

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	quote   Quote
	expires time.Time
}

// MemoryCache is the in-process Cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryCache builds an in-memory cache. A non-positive ttl never expires.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Put(_ context.Context, q Quote) error {
	q, err := Normalize(q)
	if err != nil {
		return err
	}
	entry := memoryEntry{quote: q}
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[pair(q.Symbol, q.Fiat)] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(_ context.Context, symbol, fiat string) (Quote, error) {
	c.mu.RLock()
	entry, ok := c.entries[pair(symbol, fiat)]
	c.mu.RUnlock()
	if !ok || (!entry.expires.IsZero() && !c.now().Before(entry.expires)) {
		return Quote{}, missing(symbol, fiat)
	}
	return entry.quote, nil
}
