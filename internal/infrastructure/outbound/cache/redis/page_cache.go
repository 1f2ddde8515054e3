package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/custom_errors"
	ports "yatube/internal/domain/ports/output"
)

const pageCacheKeyPrefix = "page:"

type PageCache struct {
	client *Client
	log    ports.Logger
}

func NewPageCache(client *Client, log ports.Logger) *PageCache {
	return &PageCache{client: client, log: log}
}

func (p *PageCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := p.client.Get(ctx, p.key(key))
	if err != nil {
		if errors.Is(err, custom_errors.ErrCacheMiss) {
			return nil, custom_errors.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get page from cache: %w", err)
	}
	return val, nil
}

func (p *PageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		p.log.Debug("Skipping page cache set with non-positive ttl", slog.String("key", key))
		return nil
	}
	if err := p.client.Set(ctx, p.key(key), value, ttl); err != nil {
		return fmt.Errorf("failed to set page cache: %w", err)
	}
	return nil
}

func (p *PageCache) Clear(ctx context.Context) error {
	if err := p.client.DeletePattern(ctx, pageCacheKeyPrefix+"*"); err != nil {
		return fmt.Errorf("failed to clear page cache: %w", err)
	}
	p.log.Info("Page cache cleared")
	return nil
}

func (p *PageCache) key(key string) string {
	return pageCacheKeyPrefix + key
}
