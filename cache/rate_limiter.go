package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter decides whether one more request from a caller is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, callerID string) (bool, error)
}

// tokenBucketScript implements a per-caller token bucket in Redis so the
// limit holds across instances.
const tokenBucketScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])

local tokens_key = key .. ":tokens"
local timestamp_key = key .. ":ts"

local tokens = tonumber(redis.call("get", tokens_key) or burst)
local last_update = tonumber(redis.call("get", timestamp_key) or 0)

local elapsed = math.max(0, now - last_update)
local new_tokens = math.min(burst, tokens + elapsed * rate)

if new_tokens < 1 then
	return 0
end

new_tokens = new_tokens - 1

redis.call("setex", tokens_key, 2, new_tokens)
redis.call("setex", timestamp_key, 2, now)

return 1
`

// RedisRateLimiter is a token bucket evaluated by a Lua script in Redis.
type RedisRateLimiter struct {
	prefix string
	rate   int
	burst  int
}

// NewRedisRateLimiter creates a Redis-backed limiter with the given
// refill rate (tokens per second) and bucket capacity.
func NewRedisRateLimiter(prefix string, ratePerSecond, burst int) *RedisRateLimiter {
	return &RedisRateLimiter{
		prefix: fmt.Sprintf("rate_limit:%s", prefix),
		rate:   ratePerSecond,
		burst:  burst,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, callerID string) (bool, error) {
	client, err := GetClient()
	if err != nil {
		return false, err
	}

	key := l.prefix + ":" + callerID
	now := time.Now().Unix()
	result, err := client.Eval(ctx, tokenBucketScript, []string{key}, now, l.rate, l.burst).Result()
	if err != nil {
		return false, err
	}
	return result.(int64) == 1, nil
}

// LocalRateLimiter keeps one golang.org/x/time token bucket per caller.
// It is the in-process fallback when Redis is not configured.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewLocalRateLimiter(ratePerSecond, burst int) *LocalRateLimiter {
	return &LocalRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(ratePerSecond),
		burst:    burst,
	}
}

func (l *LocalRateLimiter) Allow(ctx context.Context, callerID string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[callerID]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[callerID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}

// FallbackRateLimiter prefers the Redis limiter and falls back to the
// local one when Redis errors.
type FallbackRateLimiter struct {
	primary  RateLimiter
	fallback RateLimiter
}

func NewFallbackRateLimiter(primary, fallback RateLimiter) *FallbackRateLimiter {
	return &FallbackRateLimiter{primary: primary, fallback: fallback}
}

func (l *FallbackRateLimiter) Allow(ctx context.Context, callerID string) (bool, error) {
	allowed, err := l.primary.Allow(ctx, callerID)
	if err == nil {
		return allowed, nil
	}
	return l.fallback.Allow(ctx, callerID)
}
