// Kunhua Huang 2026

package interceptor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

var ErrPanic = errors.New("handler panicked")

// Recovery turns a handler panic into ErrPanic. The stack goes to the log,
// never to the peer.
func Recovery(logger zerolog.Logger) Interceptor {
	return func(ctx context.Context, payload []byte, next Handler) (reply []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				reply = nil
				err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		return next(ctx, payload)
	}
}
