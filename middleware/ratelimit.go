// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/transit-dashboard/auth"
)

const (
	maxVisitors  = 10000
	visitorIdle  = 3 * time.Minute
	retryDefault = time.Second
)

// RateLimiter hands out one token bucket per client IP. Client IPs are
// hashed before they are stored; idle visitors are forgotten.
type RateLimiter struct {
	mu       sync.Mutex
	visitors *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	salt     string
}

// NewRateLimiter allows perSecond requests per IP with the given burst.
func NewRateLimiter(perSecond float64, burst int, salt string) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: expirable.NewLRU[string, *rate.Limiter](maxVisitors, nil, visitorIdle),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		salt:     salt,
	}
}

func (rl *RateLimiter) visitor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.visitors.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
	}
	// re-adding renews the idle timer
	rl.visitors.Add(key, limiter)
	return limiter
}

// Allow reports whether the request's client may proceed now.
func (rl *RateLimiter) Allow(r *http.Request) bool {
	return rl.visitor(auth.HashIP(GetClientIP(r), rl.salt)).Allow()
}

// Limit wraps a handler, answering 429 with Retry-After once a client
// exceeds its rate.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		next(w, r)
	}
}

// retryAfter is the time to refill one token, in whole seconds.
func (rl *RateLimiter) retryAfter() int {
	wait := retryDefault
	if rl.limit > 0 && rl.limit != rate.Inf {
		wait = time.Duration(float64(time.Second) / float64(rl.limit))
	}
	return int(math.Ceil(wait.Seconds()))
}
