//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/config"
	platformredis "github.com/bossygit/digital-medical-certificate-system/internal/platform/redis"
)

// RedisContainer is a disposable Redis reached through the same connect
// path the server uses.
type RedisContainer struct {
	URL    string
	Client *redis.Client

	container *tcredis.RedisContainer
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	c, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	url, err := c.ConnectionString(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		t.Fatalf("redis url: %v", err)
	}
	client, err := platformredis.New(ctx, config.RedisConfig{
		URL:          url,
		PoolSize:     4,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		_ = c.Terminate(ctx)
		t.Fatalf("connect redis: %v", err)
	}
	// Shared across tests through Manager; the reaper removes it.
	return &RedisContainer{URL: url, Client: client.Client, container: c}
}

// FlushAll resets state between tests sharing the container.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}
