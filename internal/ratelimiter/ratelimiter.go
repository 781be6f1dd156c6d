package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces filesystem operations with a token bucket.
//
// Probes against network shares issue hundreds of create and remove calls
// in a tight loop. A Limiter spreads them out: tokens refill at the
// configured rate and the bucket holds at most burst of them, so short
// bursts still run at full speed.
//
// A Limiter built with a zero rate never blocks.
//
// Thread safety:
// All methods are safe for concurrent use. Parallel probes share one Limiter
// so the rate applies to the whole run.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter allowing opsPerSecond sustained operations with
// bursts of up to burst.
//
// Special cases:
//   - opsPerSecond = 0: unlimited
//   - burst = 0: one operation at a time
func New(opsPerSecond, burst uint) *Limiter {
	if opsPerSecond == 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(opsPerSecond), int(burst))}
}

// Unlimited reports whether the Limiter never blocks.
func (l *Limiter) Unlimited() bool {
	return l.limiter.Limit() == rate.Inf
}

// Allow takes a token if one is available without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until a token is available.
//
// Returns the context error if ctx is done first, or an error if the wait
// would outlast the context deadline.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Tokens returns the tokens currently in the bucket. Useful for debugging;
// the value is stale as soon as it is returned.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}
