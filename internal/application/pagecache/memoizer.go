// Package pagecache memoizes rendered pages for a fixed freshness window.
//
// Inside the window a cached render is returned even if the underlying data
// changed; Clear discards every entry at once. Cache failures never fail a
// request: the page is rendered directly instead.
package pagecache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yatube/internal/custom_errors"
	ports "yatube/internal/domain/ports/output"
	"yatube/internal/domain/ports/output/cache"
)

// RenderFunc produces the bytes of a page.
type RenderFunc func(ctx context.Context) ([]byte, error)

type Memoizer struct {
	cache   cache.PageCache
	ttl     time.Duration
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewMemoizer(cache cache.PageCache, ttl time.Duration, log ports.Logger, metrics ports.MetricsProvider) *Memoizer {
	return &Memoizer{cache: cache, ttl: ttl, log: log, metrics: metrics}
}

// Fetch returns the cached render stored under key or calls render and
// stores its result. Render errors are returned and never cached.
func (m *Memoizer) Fetch(ctx context.Context, key string, render RenderFunc) ([]byte, error) {
	if m.ttl <= 0 {
		return render(ctx)
	}

	getStart := time.Now()
	cached, err := m.cache.Get(ctx, key)
	m.metrics.RecordCacheOperationDuration("page_get", time.Since(getStart))
	if err == nil {
		m.log.Debug("Page found in cache", slog.String("key", key))
		m.metrics.IncrementCacheHits()
		return cached, nil
	}

	if !errors.Is(err, custom_errors.ErrCacheMiss) {
		m.log.Warn("Failed to get page from cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	m.metrics.IncrementCacheMisses()

	body, err := render(ctx)
	if err != nil {
		return nil, err
	}

	setStart := time.Now()
	if err := m.cache.Set(ctx, key, body, m.ttl); err != nil {
		m.log.Warn("Failed to cache page",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	m.metrics.RecordCacheOperationDuration("page_set", time.Since(setStart))

	return body, nil
}

// Clear purges every cached page.
func (m *Memoizer) Clear(ctx context.Context) error {
	start := time.Now()
	err := m.cache.Clear(ctx)
	m.metrics.RecordCacheOperationDuration("page_clear", time.Since(start))
	if err != nil {
		m.log.Error("Failed to clear page cache", slog.String("error", err.Error()))
		return err
	}
	return nil
}
