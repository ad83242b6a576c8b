package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/models"
)

const redisPrefix = "rl:"

// slidingWindowScript evicts entries older than the window, admits the
// request when the window has room, and returns {admitted, count, oldest}.
// Running it server-side keeps concurrent instances from both taking the
// last slot.
var slidingWindowScript = redis.NewScript(`
local key, now, window, limit, member = KEYS[1], tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), ARGV[4]
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local admitted = 0
if count < limit then
  redis.call('ZADD', key, now, member)
  count = count + 1
  admitted = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then first = tonumber(oldest[2]) end
return {admitted, count, first}
`)

// RedisBucketStore shares sliding windows between API instances. Each key is
// a sorted set of request times in milliseconds.
type RedisBucketStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisBucketStore(rdb *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{rdb: rdb, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error) {
	now := s.now()
	reply, err := slidingWindowScript.Run(ctx, s.rdb, []string{redisPrefix + key},
		now.UnixMilli(), policy.Window.Milliseconds(), policy.Limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("rate limit %s: unexpected script reply %v", key, reply)
	}

	res := &models.Result{
		Allowed: reply[0] == 1,
		Limit:   policy.Limit,
		ResetAt: time.UnixMilli(reply[2]).Add(policy.Window),
	}
	if res.Allowed {
		res.Remaining = policy.Limit - int(reply[1])
	} else {
		res.RetryAfter = retryAfter(now, res.ResetAt)
	}
	return res, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, redisPrefix+key).Err()
}
