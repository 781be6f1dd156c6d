package ratelimiter

import (
	"context"
	"testing"
	"time"
)

// TestNew verifies limiter creation with different rates.
func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		opsPerSecond uint
		burst        uint
		unlimited    bool
	}{
		{name: "standard rate", opsPerSecond: 100, burst: 100},
		{name: "low rate", opsPerSecond: 1, burst: 1},
		{name: "zero burst", opsPerSecond: 5, burst: 0},
		{name: "unlimited", opsPerSecond: 0, burst: 0, unlimited: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.opsPerSecond, tt.burst)
			if limiter == nil || limiter.limiter == nil {
				t.Fatal("New() returned an unusable limiter")
			}
			if limiter.Unlimited() != tt.unlimited {
				t.Fatalf("Unlimited() = %v, want %v", limiter.Unlimited(), tt.unlimited)
			}
		})
	}
}

// TestZeroBurstStillAllowsOne verifies that a zero burst does not block
// every operation forever.
func TestZeroBurstStillAllowsOne(t *testing.T) {
	limiter := New(5, 0)

	if !limiter.Allow() {
		t.Fatal("first operation should be allowed")
	}
	if limiter.Allow() {
		t.Fatal("second immediate operation should be throttled")
	}
}

// TestWait verifies that Wait() blocks until a token is available.
func TestWait(t *testing.T) {
	limiter := New(10, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first operation should succeed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second operation should succeed after waiting: %v", err)
	}
	elapsed := time.Since(start)

	// 10 ops/s refills one token every 100ms
	if elapsed < 50*time.Millisecond || elapsed > 300*time.Millisecond {
		t.Fatalf("wait time %v outside expected range 50ms-300ms", elapsed)
	}
}

// TestWaitContextCancellation verifies that Wait() gives up with the context.
func TestWaitContextCancellation(t *testing.T) {
	limiter := New(1, 1)
	if !limiter.Allow() {
		t.Fatal("first operation should be allowed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("Wait() should fail on a cancelled context")
	}
}

// TestUnlimitedNeverBlocks verifies that a zero rate lets everything through.
func TestUnlimitedNeverBlocks(t *testing.T) {
	limiter := New(0, 0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("unlimited limiter failed operation %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("unlimited limiter took %v for 1000 operations", elapsed)
	}
}

// TestTokens verifies that Tokens() tracks consumption.
func TestTokens(t *testing.T) {
	limiter := New(10, 10)

	initial := limiter.Tokens()
	if initial < 9 || initial > 10 {
		t.Fatalf("initial tokens %f outside expected range 9-10", initial)
	}

	for i := 0; i < 5; i++ {
		limiter.Allow()
	}

	remaining := limiter.Tokens()
	if remaining < 4 || remaining > 6 {
		t.Fatalf("remaining tokens %f outside expected range 4-6", remaining)
	}
}

// BenchmarkWaitUnlimited measures the cost every probe operation pays when
// no rate is configured.
func BenchmarkWaitUnlimited(b *testing.B) {
	limiter := New(0, 0)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = limiter.Wait(ctx)
	}
}
