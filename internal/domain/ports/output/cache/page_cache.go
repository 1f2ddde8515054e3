package cache

import (
	"context"
	"time"
)

// PageCache stores rendered page fragments. Get returns
// custom_errors.ErrCacheMiss for absent or expired keys.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}
