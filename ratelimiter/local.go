package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter holds a token budget and a request budget, both refilled
// every minute. Image calls are cheap in prompt tokens but expensive per
// request, so the request bucket is usually the one that binds.
type RateLimiter struct {
	TokensBucket   *TokenBucket
	RequestsBucket *TokenBucket
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// RateLimits mirrors the imagestudio.RateLimits type to avoid circular imports.
// TokensPerDay is accepted but not enforced.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
	TokensPerDay      int
}

// New creates a limiter allowing tokensPerMinute tokens and
// requestsPerMinute calls per minute.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return NewFromLimits(&RateLimits{
		TokensPerMinute:   tokensPerMinute,
		RequestsPerMinute: requestsPerMinute,
	})
}

// NewFromLimits creates a RateLimiter from a RateLimits configuration.
// A zero limit disables that bucket.
func NewFromLimits(limits *RateLimits) *RateLimiter {
	refillInterval := time.Minute
	rl := &RateLimiter{}
	if limits.TokensPerMinute > 0 {
		rl.TokensBucket = NewTokenBucket(limits.TokensPerMinute, limits.TokensPerMinute, refillInterval)
	}
	if limits.RequestsPerMinute > 0 {
		rl.RequestsBucket = NewTokenBucket(limits.RequestsPerMinute, limits.RequestsPerMinute, refillInterval)
	}
	return rl
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (rl *RateLimiter) HasCapacity(numTokens int) bool {
	return rl.TokensBucket.HasCapacity(numTokens) && rl.RequestsBucket.HasCapacity(1)
}

// TryConsume atomically checks capacity and consumes tokens if available.
// Nothing is consumed unless both buckets have room.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	if !rl.HasCapacity(numTokens) {
		return false
	}
	return rl.TokensBucket.TryConsume(numTokens) && rl.RequestsBucket.TryConsume(1)
}

// Bucket names reported by Binding.
const (
	LimitRequests = "requests"
	LimitTokens   = "tokens"
)

// Binding reports which bucket would refuse a call of tokens tokens,
// or "" when both have room.
func (rl *RateLimiter) Binding(tokens int) string {
	if !rl.RequestsBucket.HasCapacity(1) {
		return LimitRequests
	}
	if !rl.TokensBucket.HasCapacity(tokens) {
		return LimitTokens
	}
	return ""
}

// Wait returns the time the caller needs to wait to consume the specified number of tokens.
func (rl *RateLimiter) Wait(tokens int) time.Duration {
	return max(rl.TokensBucket.Wait(tokens), rl.RequestsBucket.Wait(1))
}

// TimeUntilAvailable returns how long until the specified tokens would be available.
// This does not modify state.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	return max(rl.TokensBucket.TimeUntilAvailable(tokens), rl.RequestsBucket.TimeUntilAvailable(1))
}

// WaitAndConsume waits until tokens are available (up to maxWait), then consumes them.
// If maxWait is 0, there is no limit on how long to wait.
func (rl *RateLimiter) WaitAndConsume(ctx context.Context, tokens int, maxWait time.Duration) error {
	waitDuration := rl.TimeUntilAvailable(tokens)

	if waitDuration > 0 {
		if maxWait > 0 && waitDuration > maxWait {
			return fmt.Errorf("rate limit wait time %v exceeds max wait %v", waitDuration, maxWait)
		}

		timer := time.NewTimer(waitDuration)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if !rl.TryConsume(tokens) {
		return fmt.Errorf("failed to acquire tokens after waiting")
	}

	return nil
}

// TokenBucket implements a token bucket rate limit algorithm.
// A nil *TokenBucket is unlimited.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
	now            func() time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      initialTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (tb *TokenBucket) HasCapacity(tokens int) bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	remaining := tb.remaining
	if tb.now().Sub(tb.lastRefill) >= tb.refillInterval {
		remaining = tb.capacity
	}
	return tokens <= remaining
}

// TryConsume atomically checks and consumes tokens.
func (tb *TokenBucket) TryConsume(tokens int) bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if now.Sub(tb.lastRefill) >= tb.refillInterval {
		tb.remaining = tb.capacity
		tb.lastRefill = now
	}
	if tokens <= tb.remaining {
		tb.remaining -= tokens
		return true
	}
	return false
}

// TimeUntilAvailable returns how long until tokens would be available (read-only).
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	if tb == nil {
		return 0
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	return tb.waitLocked(tb.effectiveRemainingLocked(tb.now()), tokens)
}

// Wait refills the bucket for elapsed time and returns how long the caller
// must wait for tokens.
func (tb *TokenBucket) Wait(tokens int) time.Duration {
	if tb == nil {
		return 0
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if now.Sub(tb.lastRefill) > 0 {
		tb.remaining = tb.effectiveRemainingLocked(now)
		tb.lastRefill = now
	}
	return tb.waitLocked(tb.remaining, tokens)
}

// effectiveRemainingLocked accounts for partial refill since lastRefill.
func (tb *TokenBucket) effectiveRemainingLocked(now time.Time) int {
	elapsed := now.Sub(tb.lastRefill)
	switch {
	case elapsed >= tb.refillInterval:
		return tb.capacity
	case elapsed > 0:
		replenished := int(float64(tb.capacity) * (float64(elapsed) / float64(tb.refillInterval)))
		return min(tb.capacity, tb.remaining+replenished)
	default:
		return tb.remaining
	}
}

func (tb *TokenBucket) waitLocked(remaining, tokens int) time.Duration {
	if tokens <= remaining {
		return 0
	}

	tokensNeeded := tokens - remaining
	tokenRefillRate := float64(tb.capacity) / float64(tb.refillInterval)
	waitDuration := time.Duration(float64(tokensNeeded) / tokenRefillRate)

	// 10% buffer
	return waitDuration + (waitDuration / 10)
}
