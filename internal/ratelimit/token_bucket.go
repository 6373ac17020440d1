// Package ratelimit implements a Redis-backed token bucket keyed by client
// address.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills lazily on each request and answers allow/deny in
// a single round trip. KEYS[1] is the bucket, ARGV: rate, burst, now (unix
// milliseconds).
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'updated')
local tokens = tonumber(bucket[1])
local updated = tonumber(bucket[2])

if tokens == nil then
  tokens = burst
  updated = now
end

local elapsed = math.max(0, now - updated) / 1000.0
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'updated', now)
redis.call('PEXPIRE', key, math.ceil(burst / rate * 2000))

return allowed
`)

// Limiter answers whether a caller may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, rate float64, burst int) (bool, error)
}

type redisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) Limiter {
	return &redisLimiter{client: client}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, rate float64, burst int) (bool, error) {
	now := time.Now().UnixMilli()
	allowed, err := tokenBucketScript.Run(ctx, l.client,
		[]string{"ratelimit:" + key}, rate, burst, now).Int()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// noopLimiter admits everything. Used when Redis is not configured.
type noopLimiter struct{}

func NewNoopLimiter() Limiter { return &noopLimiter{} }

func (l *noopLimiter) Allow(ctx context.Context, key string, rate float64, burst int) (bool, error) {
	return true, nil
}
