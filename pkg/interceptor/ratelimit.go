//Kunhua Huang 2026

package interceptor

import (
	"context"

	"github.com/ecstasoy/msgbus/pkg/ratelimiter"
)

// RateLimit rejects requests beyond the limiter's budget instead of
// queueing them.
func RateLimit(limiter ratelimiter.RateLimiter) Interceptor {
	return func(ctx context.Context, payload []byte, next Handler) ([]byte, error) {
		if !limiter.Allow(ctx) {
			return nil, ratelimiter.ErrRateLimitExceeded
		}

		return next(ctx, payload)
	}
}
