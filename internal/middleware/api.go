// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// APIError is the error envelope written by API middleware and handlers.
type APIError struct {
	Success bool         `json:"success"`
	Error   APIErrorBody `json:"error"`
}

// APIErrorBody describes a single failure.
type APIErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteAPIError writes a JSON error envelope with the given status.
func WriteAPIError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{
		Error: APIErrorBody{Code: code, Message: message, Details: details},
	})
}

// limiterCache holds one rate limiter per key.
type limiterCache[K comparable] struct {
	mu       sync.RWMutex
	limiters map[K]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterCache[K comparable](r rate.Limit, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*limiterEntry),
		rate:     r,
		burst:    burst,
	}
}

func (c *limiterCache[K]) get(key K, now time.Time) *rate.Limiter {
	c.mu.RLock()
	entry, ok := c.limiters[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		entry.lastSeen = now
		c.mu.Unlock()
		return entry.limiter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Double-check after acquiring write lock.
	if entry, ok = c.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	entry = &limiterEntry{limiter: rate.NewLimiter(c.rate, c.burst), lastSeen: now}
	c.limiters[key] = entry
	return entry.limiter
}

// prune drops limiters idle for longer than maxIdle.
func (c *limiterCache[K]) prune(now time.Time, maxIdle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.limiters {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(c.limiters, k)
			removed++
		}
	}
	return removed
}

func (c *limiterCache[K]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.limiters)
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	cache *limiterCache[string]
	now   func() time.Time
}

// NewRateLimiter creates a per-IP limiter allowing rps requests per second
// with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		cache: newLimiterCache[string](rate.Limit(rps), burst),
		now:   time.Now,
	}
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.cache.get(ip, rl.now()).AllowN(rl.now(), 1)
}

// Prune removes limiters idle for longer than maxIdle and returns how many
// were removed.
func (rl *RateLimiter) Prune(maxIdle time.Duration) int {
	return rl.cache.prune(rl.now(), maxIdle)
}

// Middleware rejects requests over the limit with a JSON 429.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(ClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					"Rate limit exceeded. Please slow down.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the client address of r, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
