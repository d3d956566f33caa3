package jwtkit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(rate int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(rate, window)
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("client") {
		t.Error("fourth request should be refused")
	}
	if !rl.Allow("other") {
		t.Error("keys must have independent budgets")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl, clock := newTestLimiter(4, time.Minute)
	defer rl.Close()

	for i := 0; i < 4; i++ {
		rl.Allow("client")
	}
	if !rl.Exhausted("client") {
		t.Fatal("expected client to be exhausted")
	}

	clock.Advance(15 * time.Second)
	if rl.Exhausted("client") {
		t.Error("a quarter window should refill one token")
	}
	if !rl.Allow("client") || rl.Allow("client") {
		t.Error("expected exactly one refilled token")
	}

	clock.Advance(time.Minute)
	for i := 0; i < 4; i++ {
		if !rl.Allow("client") {
			t.Fatalf("full window should restore the budget, request %d refused", i+1)
		}
	}
}

func TestRateLimiterExhausted(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)

	if rl.Exhausted("unknown") {
		t.Error("unknown keys are not exhausted")
	}
	rl.Allow("client")
	if !rl.Exhausted("client") {
		t.Error("expected exhausted after spending the only token")
	}
	rl.Reset("client")
	if rl.Exhausted("client") {
		t.Error("Reset should restore the budget")
	}

	rl.Close()
	if !rl.Exhausted("unknown") {
		t.Error("a closed limiter exhausts every key")
	}
	rl.Close()
}

func TestRateLimiterEdgeCases(t *testing.T) {
	rl, _ := newTestLimiter(2, time.Minute)
	defer rl.Close()

	if rl.Allow("") {
		t.Error("empty key must be refused")
	}
	if !rl.AllowN("client", 0) {
		t.Error("n <= 0 is always allowed")
	}
	if rl.AllowN("client", 3) {
		t.Error("n above the rate must be refused")
	}
	if !rl.AllowN("client", 2) {
		t.Error("n equal to the rate should be allowed")
	}

	defaults := NewRateLimiter(0, 0)
	if defaults.maxRate != defaultLimiterRate || defaults.window != defaultLimiterWindow {
		t.Errorf("expected defaults, got %d per %v", defaults.maxRate, defaults.window)
	}
}

func TestRateLimiterEviction(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)
	rl.maxBuckets = 2

	rl.Allow("a")
	clock.Advance(time.Second)
	rl.Allow("b")
	clock.Advance(time.Second)
	rl.Allow("c")

	if len(rl.buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(rl.buckets))
	}
	if _, ok := rl.buckets["a"]; ok {
		t.Error("oldest bucket should have been evicted")
	}
}

func TestRateLimiterConcurrent(t *testing.T) {
	rl := NewRateLimiter(100, time.Hour)
	defer rl.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if rl.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Errorf("expected exactly 100 allowed, got %d", allowed)
	}
}
