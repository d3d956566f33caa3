package jwtkit

import (
	"sync"
	"time"
)

const (
	defaultLimiterRate    = 10
	defaultLimiterWindow  = time.Minute
	defaultLimiterBuckets = 10000
)

// RateLimiter keeps a token bucket per client key. The HTTP middleware spends
// one token for every rejected token a client presents and turns the client
// away once its bucket is empty, which bounds how fast a single client can
// probe signatures. Buckets refill continuously at maxRate per window.
// It is safe for concurrent use.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxRate    int
	window     time.Duration
	maxBuckets int
	closed     bool
	now        func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter allows maxRate events per window for each key. Non-positive
// arguments fall back to 10 per minute.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	if maxRate <= 0 {
		maxRate = defaultLimiterRate
	}
	if window <= 0 {
		window = defaultLimiterWindow
	}
	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		maxRate:    maxRate,
		window:     window,
		maxBuckets: defaultLimiterBuckets,
		now:        time.Now,
	}
}

// Allow spends one token for key and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.AllowN(key, 1)
}

// AllowN spends n tokens for key if all n are available. An empty key is never
// allowed; n <= 0 always is.
func (rl *RateLimiter) AllowN(key string, n int) bool {
	if n <= 0 {
		return true
	}
	if key == "" || n > rl.maxRate {
		return false
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return false
	}
	b := rl.lookup(key, true)
	if b.tokens < float64(n) {
		return false
	}
	b.tokens -= float64(n)
	return true
}

// Exhausted reports whether key has less than one token left, without
// spending any. Unknown keys are not exhausted; a closed limiter exhausts
// every key.
func (rl *RateLimiter) Exhausted(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return true
	}
	b := rl.lookup(key, false)
	return b != nil && b.tokens < 1
}

// lookup returns the refilled bucket for key. With create set, a missing
// bucket is added full, evicting the least recently seen one at capacity.
// Callers hold rl.mu.
func (rl *RateLimiter) lookup(key string, create bool) *bucket {
	now := rl.now()

	b, ok := rl.buckets[key]
	if !ok {
		if !create {
			return nil
		}
		if len(rl.buckets) >= rl.maxBuckets {
			rl.evictLocked()
		}
		b = &bucket{tokens: float64(rl.maxRate), lastSeen: now}
		rl.buckets[key] = b
		return b
	}

	if elapsed := now.Sub(b.lastSeen); elapsed > 0 {
		b.tokens += float64(rl.maxRate) * float64(elapsed) / float64(rl.window)
		b.tokens = min(b.tokens, float64(rl.maxRate))
		b.lastSeen = now
	}
	return b
}

func (rl *RateLimiter) evictLocked() {
	var (
		victim string
		oldest time.Time
	)
	for key, b := range rl.buckets {
		if victim == "" || b.lastSeen.Before(oldest) {
			victim, oldest = key, b.lastSeen
		}
	}
	delete(rl.buckets, victim)
}

// Reset forgets key, restoring its full budget.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// Close releases all buckets. Afterwards nothing is allowed. It is safe to call
// Close multiple times.
func (rl *RateLimiter) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.closed = true
	rl.buckets = nil
}
