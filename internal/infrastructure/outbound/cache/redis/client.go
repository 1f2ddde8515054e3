package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"yatube/internal/custom_errors"
	ports "yatube/internal/domain/ports/output"
	"yatube/internal/infrastructure/config"
)

const scanBatch = 100

type Client struct {
	client *redis.Client
	log    ports.Logger
}

// NewClient connects and pings Redis, failing when it is unreachable.
func NewClient(cfg config.Redis, log ports.Logger) (*Client, error) {
	c := OpenClient(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", slog.String("error", err.Error()))
		_ = c.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Successfully connected to Redis",
		slog.String("address", cfg.Address),
		slog.Int("port", cfg.Port),
		slog.Int("db", cfg.DB))

	return c, nil
}

// OpenClient builds a client without contacting Redis. Connections are
// dialed on first use, so a server started while Redis is down picks it up
// once it comes back.
func OpenClient(cfg config.Redis, log ports.Logger) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	return &Client{client: rdb, log: log}
}

// NewClientFromRedis wraps an already configured go-redis client.
func NewClientFromRedis(rdb *redis.Client, log ports.Logger) *Client {
	return &Client{client: rdb, log: log}
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.log.Debug("Cache miss", slog.String("key", key))
			return nil, custom_errors.ErrCacheMiss
		}
		c.log.Error("Failed to get from cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	c.log.Debug("Cache hit", slog.String("key", key))
	return val, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Error("Failed to set cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.log.Debug("Successfully set cache",
		slog.String("key", key),
		slog.Duration("ttl", ttl))
	return nil
}

// DeletePattern removes every key matching pattern. It walks the keyspace
// with SCAN so a large cache does not block the server.
func (c *Client) DeletePattern(ctx context.Context, pattern string) error {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			c.log.Error("Failed to find keys by pattern",
				slog.String("pattern", pattern),
				slog.String("error", err.Error()))
			return fmt.Errorf("failed to find keys by pattern: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.log.Error("Failed to delete keys by pattern",
					slog.String("pattern", pattern),
					slog.String("error", err.Error()))
				return fmt.Errorf("failed to delete keys by pattern: %w", err)
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.log.Debug("Successfully deleted keys by pattern",
		slog.String("pattern", pattern),
		slog.Int64("deleted_count", deleted))
	return nil
}

func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		c.log.Error("Failed to close Redis connection", slog.String("error", err.Error()))
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}

	c.log.Info("Redis connection closed")
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.log.Error("Redis ping failed", slog.String("error", err.Error()))
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
