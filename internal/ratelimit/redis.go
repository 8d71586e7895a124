package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the shared Store for deployments running more than one
// gate instance.  The whole read-check-increment happens inside one Lua
// script, so concurrent hits on the same key are serialized by Redis
// itself.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// windowScript increments the key's counter, stamping the window TTL on
// first hit.  It returns the post-increment count and the remaining window
// in milliseconds.  Key expiry is the Redis-side equivalent of the memory
// store's purge pass.
var windowScript = redis.NewScript(`
    local key = KEYS[1]
    local window_ms = tonumber(ARGV[1])

    local count = redis.call('INCR', key)
    if count == 1 then
        redis.call('PEXPIRE', key, window_ms)
    end
    local ttl = redis.call('PTTL', key)
    if ttl < 0 then
        redis.call('PEXPIRE', key, window_ms)
        ttl = window_ms
    end
    return { count, ttl }
`)

// Hit counts one request against key within the current fixed window.
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	vals, err := windowScript.Run(ctx, s.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) != 2 {
		if err == nil {
			err = redis.Nil
		}
		return Decision{}, err
	}
	count, ttlMs := int(vals[0]), vals[1]

	if count > limit {
		return Decision{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			RetryAfter: time.Duration(ttlMs) * time.Millisecond,
		}, nil
	}
	return Decision{Allowed: true, Limit: limit, Remaining: limit - count}, nil
}
