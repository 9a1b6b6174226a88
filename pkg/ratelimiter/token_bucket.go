// Kunhua Huang 2026

package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type TokenBucketLimiter struct {
	capacity   int64
	nsPerToken int64

	tokens     int64
	lastUpdate time.Time

	nsRemainder int64 // nanoseconds carried over between refills
	mu          sync.Mutex

	now func() time.Time
}

var _ RateLimiter = (*TokenBucketLimiter)(nil)

// NewTokenBucketLimiter starts full. rate is tokens per second, capped at
// one token per nanosecond.
func NewTokenBucketLimiter(rate, capacity int64) (*TokenBucketLimiter, error) {
	if rate <= 0 || capacity <= 0 {
		return nil, fmt.Errorf("%w: rate=%d capacity=%d", ErrInvalidRate, rate, capacity)
	}

	nsPerToken := int64(time.Second) / rate
	if nsPerToken <= 0 {
		nsPerToken = 1
	}

	return &TokenBucketLimiter{
		capacity:   capacity,
		nsPerToken: nsPerToken,
		tokens:     capacity,
		lastUpdate: time.Now(),
		now:        time.Now,
	}, nil
}

func (tb *TokenBucketLimiter) Allow(ctx context.Context) bool {
	return tb.AllowN(ctx, 1)
}

func (tb *TokenBucketLimiter) AllowN(_ context.Context, n int) bool {
	if n <= 0 {
		return true
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	_, ok := tb.take(int64(n))
	return ok
}

func (tb *TokenBucketLimiter) Wait(ctx context.Context) error {
	return tb.WaitN(ctx, 1)
}

func (tb *TokenBucketLimiter) WaitN(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	if int64(n) > tb.capacity {
		return fmt.Errorf("%w: %d tokens exceed capacity %d", ErrInvalidRequest, n, tb.capacity)
	}

	for {
		tb.mu.Lock()
		wait, ok := tb.take(int64(n))
		tb.mu.Unlock()

		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take refills and removes n tokens if it can, otherwise reports how long
// until enough tokens accumulate. Callers hold tb.mu.
func (tb *TokenBucketLimiter) take(n int64) (time.Duration, bool) {
	tb.refill(tb.now())

	if tb.tokens >= n {
		tb.tokens -= n
		return 0, true
	}

	waitNs := (n-tb.tokens)*tb.nsPerToken - tb.nsRemainder
	if waitNs < int64(time.Microsecond) {
		waitNs = int64(time.Microsecond)
	}
	return time.Duration(waitNs), false
}

func (tb *TokenBucketLimiter) refill(now time.Time) {
	elapsed := now.Sub(tb.lastUpdate)
	if elapsed <= 0 {
		return
	}
	tb.lastUpdate = now

	totalNs := tb.nsRemainder + int64(elapsed)
	add := totalNs / tb.nsPerToken
	tb.nsRemainder = totalNs % tb.nsPerToken

	if add > 0 {
		tb.tokens += add
		if tb.tokens >= tb.capacity {
			tb.tokens = tb.capacity
			tb.nsRemainder = 0
		}
	}
}

func (tb *TokenBucketLimiter) Name() string {
	return "token-bucket"
}
