package pagecache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yatube/internal/application/pagecache"
	"yatube/internal/custom_errors"
	"yatube/internal/infrastructure/logger"
	memory_cache "yatube/internal/infrastructure/outbound/cache/memory"
	prometheus_metrics "yatube/internal/infrastructure/outbound/metrics/prometheus"
)

type mockPageCache struct {
	mock.Mock
}

func (m *mockPageCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockPageCache) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func counter(body string) (pagecache.RenderFunc, *int) {
	calls := 0
	return func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte(body), nil
	}, &calls
}

func TestMemoizer_FreshnessWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memory_cache.NewPageCache(logger.New("test"))
	store.SetClock(func() time.Time { return now })
	m := pagecache.NewMemoizer(store, 20*time.Second, logger.New("test"), prometheus_metrics.NewPrometheusMetricsProvider())
	ctx := context.Background()

	render, calls := counter("v1")
	got, err := m.Fetch(ctx, "/", render)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	changed, _ := counter("v2")
	now = now.Add(10 * time.Second)
	got, err = m.Fetch(ctx, "/", changed)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got), "stale render is served inside the window")
	assert.Equal(t, 1, *calls)

	now = now.Add(10 * time.Second)
	got, err = m.Fetch(ctx, "/", changed)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestMemoizer_Clear(t *testing.T) {
	store := memory_cache.NewPageCache(logger.New("test"))
	m := pagecache.NewMemoizer(store, time.Minute, logger.New("test"), prometheus_metrics.NewPrometheusMetricsProvider())
	ctx := context.Background()

	first, _ := counter("old")
	_, err := m.Fetch(ctx, "/", first)
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx))

	fresh, calls := counter("new")
	got, err := m.Fetch(ctx, "/", fresh)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	assert.Equal(t, 1, *calls)
}

func TestMemoizer_CacheFailureFallsBack(t *testing.T) {
	cache := new(mockPageCache)
	cache.On("Get", mock.Anything, "/").Return(nil, errors.New("connection refused"))
	cache.On("Set", mock.Anything, "/", []byte("direct"), time.Minute).Return(errors.New("connection refused"))
	m := pagecache.NewMemoizer(cache, time.Minute, logger.New("test"), prometheus_metrics.NewPrometheusMetricsProvider())

	render, calls := counter("direct")
	got, err := m.Fetch(context.Background(), "/", render)
	require.NoError(t, err)
	assert.Equal(t, "direct", string(got))
	assert.Equal(t, 1, *calls)
	cache.AssertExpectations(t)
}

func TestMemoizer_RenderErrorNotCached(t *testing.T) {
	cache := new(mockPageCache)
	cache.On("Get", mock.Anything, "/").Return(nil, custom_errors.ErrCacheMiss)
	m := pagecache.NewMemoizer(cache, time.Minute, logger.New("test"), prometheus_metrics.NewPrometheusMetricsProvider())

	_, err := m.Fetch(context.Background(), "/", func(ctx context.Context) ([]byte, error) {
		return nil, custom_errors.ErrDatabaseQuery
	})
	assert.ErrorIs(t, err, custom_errors.ErrDatabaseQuery)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMemoizer_ZeroTTLBypassesCache(t *testing.T) {
	cache := new(mockPageCache)
	m := pagecache.NewMemoizer(cache, 0, logger.New("test"), prometheus_metrics.NewPrometheusMetricsProvider())

	render, calls := counter("x")
	_, err := m.Fetch(context.Background(), "/", render)
	require.NoError(t, err)
	_, err = m.Fetch(context.Background(), "/", render)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
