package service

import (
	"sync"
	"time"
)

// RateLimiter caps analysis requests per key within a sliding window.
// Keys are typically page origins, so one noisy tab cannot starve others.
type RateLimiter struct {
	counters     map[string]*rateLimitEntry
	mu           sync.Mutex
	maxRequests  int
	windowPeriod time.Duration
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter with the specified configuration.
func NewRateLimiter(maxRequests int, windowPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		counters:     make(map[string]*rateLimitEntry),
		maxRequests:  maxRequests,
		windowPeriod: windowPeriod,
	}
}

// CheckLimit reports whether the key has exceeded its limit, plus the
// current count and when the window resets.
func (r *RateLimiter) CheckLimit(key string) (bool, int, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, ok := r.counters[key]

	if !ok || now.Sub(entry.windowStart) > r.windowPeriod {
		r.counters[key] = &rateLimitEntry{
			count:       1,
			windowStart: now,
		}
		return false, 1, now.Add(r.windowPeriod)
	}

	entry.count++

	if entry.count > r.maxRequests {
		return true, entry.count, entry.windowStart.Add(r.windowPeriod)
	}

	return false, entry.count, entry.windowStart.Add(r.windowPeriod)
}
