// ABOUTME: Redis-backed fixed-window rate limiter for multi-instance deployments
// ABOUTME: Atomic INCR+PEXPIRE Lua script; fails open when Redis is unreachable

package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitScript counts the request atomically and reports the window's
// remaining lifetime. Returns {allowed, pttl_ms}.
const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if current > tonumber(ARGV[2]) then
  return {0, ttl}
end
return {1, ttl}
`

// RedisLimiter is a fixed-window limiter shared across gateway instances.
// Redis errors fail open: rate limiting is a protection layer, not a
// availability dependency.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a shared limiter allowing limit requests per
// window. Returns nil for a nil client so callers can wire it optionally.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		limit:  limit,
		window: window,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(key string) (bool, time.Duration) {
	if l == nil || l.client == nil || key == "" || l.limit <= 0 {
		return true, 0
	}

	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	// Tight budget: a slow Redis must not stall request handling.
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	res, err := l.script.Run(ctx, l.client, []string{"ratelimit:" + key}, ttl, l.limit).Int64Slice()
	if err != nil || len(res) != 2 {
		slog.Debug("Redis limiter unavailable, failing open", "error", err)
		return true, 0
	}

	if res[0] == 1 {
		return true, 0
	}
	retryAfter := time.Duration(res[1]) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = l.window
	}
	return false, retryAfter
}
