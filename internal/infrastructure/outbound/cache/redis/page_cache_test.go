package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/custom_errors"
	"yatube/internal/infrastructure/logger"
	redis_cache "yatube/internal/infrastructure/outbound/cache/redis"
)

func setupPageCache(t *testing.T) (*redis_cache.PageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.New("test")
	client := redis_cache.NewClientFromRedis(rdb, log)
	return redis_cache.NewPageCache(client, log), mr
}

func TestPageCache_GetSet(t *testing.T) {
	cache, mr := setupPageCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "/?page=1")
	assert.ErrorIs(t, err, custom_errors.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "/?page=1", []byte("<li>post</li>"), 20*time.Second))
	assert.True(t, mr.Exists("page:/?page=1"))

	got, err := cache.Get(ctx, "/?page=1")
	require.NoError(t, err)
	assert.Equal(t, []byte("<li>post</li>"), got)

	mr.FastForward(21 * time.Second)
	_, err = cache.Get(ctx, "/?page=1")
	assert.ErrorIs(t, err, custom_errors.ErrCacheMiss)
}

func TestPageCache_ZeroTTLNotStored(t *testing.T) {
	cache, mr := setupPageCache(t)

	require.NoError(t, cache.Set(context.Background(), "/", []byte("x"), 0))
	assert.False(t, mr.Exists("page:/"))
}

func TestPageCache_ClearOnlyPages(t *testing.T) {
	cache, mr := setupPageCache(t)
	ctx := context.Background()

	for _, key := range []string{"/", "/?page=2", "/?page=3"} {
		require.NoError(t, cache.Set(ctx, key, []byte("x"), time.Minute))
	}
	require.NoError(t, mr.Set("session:other", "keep"))

	require.NoError(t, cache.Clear(ctx))

	for _, key := range []string{"/", "/?page=2", "/?page=3"} {
		_, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, custom_errors.ErrCacheMiss)
	}
	assert.True(t, mr.Exists("session:other"))
}

func TestPageCache_Unavailable(t *testing.T) {
	cache, mr := setupPageCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "/")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, custom_errors.ErrCacheMiss)
}
