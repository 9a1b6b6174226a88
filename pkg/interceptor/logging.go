// Kunhua Huang 2026

package interceptor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Logging logs every exchange: debug on success, warn on failure.
func Logging(logger zerolog.Logger) Interceptor {
	return func(ctx context.Context, payload []byte, next Handler) ([]byte, error) {
		start := time.Now()

		reply, err := next(ctx, payload)

		duration := time.Since(start)

		if err != nil {
			logger.Warn().
				Err(err).
				Int("request_bytes", len(payload)).
				Dur("duration", duration).
				Msg("handler failed")
		} else {
			logger.Debug().
				Int("request_bytes", len(payload)).
				Int("reply_bytes", len(reply)).
				Dur("duration", duration).
				Msg("handler succeeded")
		}

		return reply, err
	}
}
