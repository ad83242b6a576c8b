// Package redis connects the shared Redis used for token revocations and
// rate limit windows.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/config"
)

const connectTimeout = 5 * time.Second

// Client embeds the go-redis client so stores can take *redis.Client directly.
type Client struct {
	*redis.Client
}

// New dials Redis from cfg and fails fast if it does not answer a PING.
// An unconfigured Redis yields a nil client and no error; callers then fall
// back to the Postgres or in-memory stores.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout = cfg.DialTimeout, cfg.ReadTimeout, cfg.WriteTimeout

	c := &Client{Client: redis.NewClient(opts)}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.Health(pingCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", opts.Addr, err)
	}
	return c, nil
}

// Health backs the /health check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
