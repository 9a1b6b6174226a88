// Kunhua Huang 2026

package interceptor

import (
	"context"
	"time"
)

// HandlerObserver receives the outcome of each handled request.
type HandlerObserver interface {
	ObserveHandler(elapsed time.Duration, err error)
}

func Metrics(observer HandlerObserver) Interceptor {
	return func(ctx context.Context, payload []byte, next Handler) ([]byte, error) {
		start := time.Now()

		reply, err := next(ctx, payload)

		observer.ObserveHandler(time.Since(start), err)

		return reply, err
	}
}
