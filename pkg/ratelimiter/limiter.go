// Kunhua Huang 2026

package ratelimiter

import (
	"context"
	"errors"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInvalidRequest    = errors.New("invalid request for rate limiter")
	ErrInvalidRate       = errors.New("rate and capacity must be positive")
)

// RateLimiter paces message traffic. Allow never blocks; Wait blocks until
// a token is available or ctx is done.
type RateLimiter interface {
	Allow(ctx context.Context) bool
	AllowN(ctx context.Context, n int) bool
	Wait(ctx context.Context) error
	Name() string
}

// Unlimited never limits. It stands in when pacing is switched off.
type Unlimited struct{}

var _ RateLimiter = Unlimited{}

func (Unlimited) Allow(context.Context) bool       { return true }
func (Unlimited) AllowN(context.Context, int) bool { return true }
func (Unlimited) Wait(ctx context.Context) error   { return ctx.Err() }
func (Unlimited) Name() string                     { return "unlimited" }

// New returns a token bucket allowing rate messages per second with bursts
// of up to burst messages, or Unlimited when rate is not positive.
func New(rate, burst int64) (RateLimiter, error) {
	if rate <= 0 {
		return Unlimited{}, nil
	}
	if burst <= 0 {
		burst = 1
	}
	tb, err := NewTokenBucketLimiter(rate, burst)
	if err != nil {
		return nil, err
	}
	return tb, nil
}
