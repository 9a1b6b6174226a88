package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"time"
)

// WatchContext arms setDeadline with the context deadline and forces an
// immediate deadline when the context is canceled, so blocked socket I/O
// returns. The returned stop func disarms the watcher; it must be called
// before the next I/O on the same direction.
func WatchContext(ctx context.Context, timeout time.Duration, setDeadline func(time.Time) error) (stop func(), err error) {
	deadline, hasDeadline := ctx.Deadline()
	if timeout > 0 {
		if d := time.Now().Add(timeout); !hasDeadline || d.Before(deadline) {
			deadline, hasDeadline = d, true
		}
	}

	if hasDeadline {
		if err := setDeadline(deadline); err != nil {
			return nil, err
		}
	} else if err := setDeadline(time.Time{}); err != nil {
		return nil, err
	}

	done := ctx.Done()
	if done == nil {
		return func() {}, nil
	}

	quit := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		select {
		case <-done:
			_ = setDeadline(time.Unix(1, 0))
		case <-quit:
		}
	}()

	return func() {
		close(quit)
		<-finished
	}, nil
}

// ContextError replaces a timeout caused by ctx with ctx's own error.
func ContextError(ctx context.Context, err error) error {
	if err == nil || !isTimeout(err) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	// the socket deadline can fire a moment before the context timer
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
