package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecstasoy/msgbus/pkg/interceptor"
	"github.com/ecstasoy/msgbus/pkg/ratelimiter"
)

var ErrEmptyReply = errors.New("handler returned an empty reply")

// mapError chooses the message carried by the error frame. Well-known
// causes travel as their sentinel text so the client can restore them.
func mapError(err error) string {
	switch {
	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		return ratelimiter.ErrRateLimitExceeded.Error()

	case errors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded.Error()

	case errors.Is(err, context.Canceled):
		return context.Canceled.Error()

	case errors.Is(err, interceptor.ErrPanic):
		return interceptor.ErrPanic.Error()

	default:
		return fmt.Sprintf("handler failed: %v", err)
	}
}
