package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"yatube/internal/custom_errors"
	ports "yatube/internal/domain/ports/output"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// PageCache keeps rendered pages in process memory. It backs the page cache
// when Redis is disabled or unreachable.
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	log     ports.Logger
}

func NewPageCache(log ports.Logger) *PageCache {
	return &PageCache{entries: make(map[string]entry), now: time.Now, log: log}
}

// SetClock replaces the expiry time source.
func (c *PageCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *PageCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	now := c.now()
	c.mu.RUnlock()

	if !ok || !now.Before(e.expiresAt) {
		return nil, custom_errors.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *PageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{value: stored, expiresAt: now.Add(ttl)}
	return nil
}

func (c *PageCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.log.Info("Page cache cleared", slog.Int("entries", n))
	return nil
}
