// ABOUTME: Rate limiting middleware with fixed-window counters
// ABOUTME: Per-endpoint limits keyed by client IP, in-memory or Redis-backed

package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter decides whether a keyed request may proceed. Implementations:
// FixedWindowLimiter (in-process) and RedisLimiter (shared).
type Limiter interface {
	// Allow returns whether the request is permitted and, when denied,
	// the duration until the window resets.
	Allow(key string) (bool, time.Duration)
}

// counter tracks requests within a fixed time window.
type counter struct {
	count     int
	expiresAt time.Time
}

// FixedWindowLimiter enforces a maximum number of requests per window.
// Each unique key gets an independent counter. Counters live in process
// memory, so limits are per-instance; use RedisLimiter when several
// gateway instances must share a budget.
type FixedWindowLimiter struct {
	mu           sync.Mutex
	windows      map[string]*counter
	limit        int
	window       time.Duration
	sweepCounter int // new windows since last sweep; triggers cleanup every 100
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per window.
func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows: make(map[string]*counter),
		limit:   limit,
		window:  window,
	}
}

// Allow checks whether a request for the given key should be permitted.
func (rl *FixedWindowLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, exists := rl.windows[key]

	// Start a new window if none exists or the current one expired.
	// Use !now.Before (>=) so the boundary instant starts a new window
	// rather than returning retryAfter==0 while still denying the request.
	if !exists || !now.Before(c.expiresAt) {
		if exists {
			delete(rl.windows, key)
		}
		rl.windows[key] = &counter{
			count:     1,
			expiresAt: now.Add(rl.window),
		}

		// Periodic sweep bounds memory to active keys + 100 stale entries.
		rl.sweepCounter++
		if rl.sweepCounter >= 100 {
			rl.sweep(now)
			rl.sweepCounter = 0
		}

		return true, 0
	}

	if c.count < rl.limit {
		c.count++
		return true, 0
	}

	return false, c.expiresAt.Sub(now)
}

// sweep removes all expired entries. Must be called while holding rl.mu.
func (rl *FixedWindowLimiter) sweep(now time.Time) {
	for k, c := range rl.windows {
		if !now.Before(c.expiresAt) {
			delete(rl.windows, k)
		}
	}
}

// ClientIP extracts the client IP from X-Forwarded-For (leftmost) or
// RemoteAddr. Trusting X-Forwarded-For is safe only behind a reverse
// proxy that sets it; exposed directly, clients could spoof the header to
// dodge IP-keyed limits.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" && net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// RateLimit returns middleware enforcing the given limiter with the given
// key function. A nil limiter or keyFunc disables limiting; an empty key
// passes through (unidentifiable client).
func RateLimit(limiter Limiter, keyFunc func(*http.Request) string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || keyFunc == nil {
				next(w, r)
				return
			}

			key := keyFunc(r)
			if key == "" {
				next(w, r)
				return
			}

			allowed, retryAfter := limiter.Allow(key)
			if allowed {
				next(w, r)
				return
			}

			retrySeconds := int(math.Ceil(retryAfter.Seconds()))
			slog.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path, "retry_after", retrySeconds)

			w.Header().Set("Retry-After", fmt.Sprintf("%d", retrySeconds))
			writeJSONError(w, "Too many requests, slow down", http.StatusTooManyRequests)
		}
	}
}
