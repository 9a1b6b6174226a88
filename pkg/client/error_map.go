// Kunhua Huang 2026

package client

import (
	"context"
	"fmt"

	"github.com/ecstasoy/msgbus/pkg/channel"
	"github.com/ecstasoy/msgbus/pkg/ratelimiter"
)

// unmapError restores the sentinel behind a well-known remote error message
// so callers can test it with errors.Is. The channel error stays wrapped.
func unmapError(err error, remote *channel.RemoteError) error {
	switch remote.Message {
	case ratelimiter.ErrRateLimitExceeded.Error():
		return fmt.Errorf("%w: %w", ratelimiter.ErrRateLimitExceeded, err)

	case context.DeadlineExceeded.Error():
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)

	case context.Canceled.Error():
		return fmt.Errorf("%w: %w", context.Canceled, err)

	default:
		return err
	}
}
