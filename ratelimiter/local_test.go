package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(capacity, initial int, interval time.Duration) (*TokenBucket, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	tb := NewTokenBucket(capacity, initial, interval)
	tb.now = clock.Now
	tb.lastRefill = clock.t
	return tb, clock
}

func TestTokenBucket(t *testing.T) {
	bucket, clock := newTestBucket(10, 10, time.Minute)

	if !bucket.TryConsume(5) {
		t.Error("failed to consume tokens from full bucket")
	}
	if bucket.remaining != 5 {
		t.Errorf("expected 5 remaining tokens, got %d", bucket.remaining)
	}

	if bucket.TryConsume(6) {
		t.Error("should not be able to consume more than remaining")
	}

	clock.Advance(time.Minute)
	if !bucket.HasCapacity(10) {
		t.Error("expected full capacity after refill interval")
	}
	if !bucket.TryConsume(10) {
		t.Error("should succeed after refill")
	}
}

func TestTokenBucket_Nil(t *testing.T) {
	var bucket *TokenBucket
	if !bucket.TryConsume(1_000_000) {
		t.Error("nil bucket should be unlimited")
	}
	if wait := bucket.TimeUntilAvailable(1); wait != 0 {
		t.Errorf("nil bucket wait = %v, want 0", wait)
	}
}

func TestTokenBucket_TimeUntilAvailable(t *testing.T) {
	bucket, clock := newTestBucket(60, 0, time.Minute) // 1 token per second

	wait := bucket.TimeUntilAvailable(1)
	if wait < 900*time.Millisecond || wait > 1500*time.Millisecond {
		t.Errorf("expected wait around 1s, got %v", wait)
	}

	clock.Advance(2 * time.Second)
	if wait := bucket.TimeUntilAvailable(1); wait != 0 {
		t.Errorf("expected no wait after partial refill, got %v", wait)
	}
	if bucket.remaining != 0 {
		t.Errorf("TimeUntilAvailable must not modify state, remaining = %d", bucket.remaining)
	}
}

func TestRateLimiter_TryConsume(t *testing.T) {
	tests := []struct {
		name   string
		tpm    int
		rpm    int
		tokens []int
		want   []bool
	}{
		{"within limits", 100, 10, []int{10}, []bool{true}},
		{"tokens exhausted", 10, 100, []int{10, 1}, []bool{true, false}},
		{"requests exhausted", 100, 1, []int{1, 1}, []bool{true, false}},
		{"zero limits are unlimited", 0, 0, []int{1 << 20, 1 << 20}, []bool{true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.tpm, tt.rpm)
			for i, n := range tt.tokens {
				if got := rl.TryConsume(n); got != tt.want[i] {
					t.Errorf("call %d: TryConsume(%d) = %v, want %v", i, n, got, tt.want[i])
				}
			}
		})
	}
}

func TestRateLimiter_TryConsumeIsAtomic(t *testing.T) {
	rl := New(100, 1)

	if rl.TryConsume(200) {
		t.Fatal("should not proceed when tokens insufficient")
	}
	if !rl.TryConsume(50) {
		t.Fatal("failed request must not have consumed the request budget")
	}
}

func TestRateLimiter_Binding(t *testing.T) {
	tests := []struct {
		name    string
		tpm     int
		rpm     int
		consume int
		tokens  int
		want    string
	}{
		{"room in both", 100, 10, 0, 10, ""},
		{"requests spent", 100, 1, 1, 1, LimitRequests},
		{"tokens spent", 10, 100, 10, 1, LimitTokens},
		{"unlimited", 0, 0, 1 << 20, 1 << 20, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.tpm, tt.rpm)
			if tt.consume > 0 {
				rl.TryConsume(tt.consume)
			}
			if got := rl.Binding(tt.tokens); got != tt.want {
				t.Errorf("Binding(%d) = %q, want %q", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := New(60, 60) // 1 token per second

	rl.TokensBucket.TryConsume(60)

	wait := rl.Wait(1)
	if wait < 900*time.Millisecond || wait > 1500*time.Millisecond {
		t.Errorf("expected wait around 1s, got %v", wait)
	}
}

func TestRateLimiter_WaitAndConsume(t *testing.T) {
	t.Run("exceeds max wait", func(t *testing.T) {
		rl := New(60, 60)
		rl.TokensBucket.TryConsume(60)

		err := rl.WaitAndConsume(context.Background(), 30, time.Second)
		if err == nil {
			t.Fatal("expected error when wait exceeds maxWait")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		rl := New(60, 60)
		rl.TokensBucket.TryConsume(60)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := rl.WaitAndConsume(ctx, 30, 0)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("available immediately", func(t *testing.T) {
		rl := New(60, 60)
		if err := rl.WaitAndConsume(context.Background(), 10, 0); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
