// Package ratelimit throttles per-site-key request rates with an
// in-process token bucket per key. Keys never share a bucket, and the
// map lock is held only for lookup/insert, never across an Allow call.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// TryAcquire reports whether one request is admitted for the key at the
// given requests-per-second ceiling. rps <= 0 means unlimited.
func (rl *RateLimiter) TryAcquire(siteKey string, rps int) bool {
	if rps <= 0 {
		return true
	}
	return rl.getLimiter(siteKey, rps).Allow()
}

func (rl *RateLimiter) getLimiter(siteKey string, rps int) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[siteKey]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[siteKey]; exists {
		return limiter
	}

	// Burst equals the per-second ceiling so a full second's worth of
	// requests can arrive at once without starving the key.
	limiter = rate.NewLimiter(rate.Limit(rps), rps)
	rl.limiters[siteKey] = limiter
	return limiter
}
