package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Every authenticated request performs one lookup, so its latency is tracked.
var lookupSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "medcert_token_revocation_lookup_seconds",
	Help:    "Latency of revoked-token lookups against Redis.",
	Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
})

const keyPrefix = "medcert:revoked:"

// RedisTRL shares revocations across API instances. Keys carry the
// remaining token lifetime as their TTL so Redis forgets them on its own.
type RedisTRL struct {
	rdb *redis.Client
	now Clock
}

func NewRedisTRL(rdb *redis.Client) *RedisTRL {
	return &RedisTRL{rdb: rdb, now: time.Now}
}

func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	expires, skip, err := until(t.now(), jti, ttl)
	if skip || err != nil {
		return err
	}
	if err := t.rdb.Set(ctx, keyPrefix+jti, expires.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}
	return nil
}

func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	timer := prometheus.NewTimer(lookupSeconds)
	defer timer.ObserveDuration()

	n, err := t.rdb.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("load revocation: %w", err)
	}
	return n == 1, nil
}
