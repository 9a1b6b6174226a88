// Kunhua Huang 2026

package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ecstasoy/msgbus/pkg/transport"
)

// Transport serves the tcp:// and ipc:// schemes.
type Transport struct{}

var _ transport.Transport = (*Transport)(nil)

func init() {
	transport.Register(transport.SchemeTCP, &Transport{})
	transport.Register(transport.SchemeIPC, &Transport{})
}

func (t *Transport) Dial(ctx context.Context, ep transport.Endpoint, opts *transport.ClientOptions) (transport.Conn, error) {
	dialer := &net.Dialer{
		Timeout:   opts.DialTimeout,
		KeepAlive: opts.KeepAlivePeriod,
	}

	conn, err := dialer.DialContext(ctx, ep.Network(), ep.HostPort())
	if err != nil {
		return nil, fmt.Errorf("dial %s failed: %w", ep, err)
	}

	if err := tuneConn(conn, opts.KeepAlive, opts.KeepAlivePeriod); err != nil {
		_ = conn.Close()
		return nil, err
	}

	codec := transport.NewFrameCodec(opts.Compress, opts.MaxFrameSize)
	return newConn(conn, codec, opts.ReadBufferSize, opts.WriteTimeout), nil
}

func (t *Transport) Listen(ctx context.Context, ep transport.Endpoint, opts *transport.ServerOptions) (transport.Listener, error) {
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, ep.Network(), ep.HostPort())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", ep, err)
	}

	return &Listener{
		listener: listener,
		opts:     opts,
		codec:    transport.NewFrameCodec(opts.Compress, opts.MaxFrameSize),
	}, nil
}

func tuneConn(conn net.Conn, keepAlive bool, period time.Duration) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if keepAlive {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return fmt.Errorf("set keep-alive failed: %w", err)
		}

		if err := tcpConn.SetKeepAlivePeriod(period); err != nil {
			return fmt.Errorf("set keep-alive period failed: %w", err)
		}
	}

	if err := tcpConn.SetNoDelay(true); err != nil {
		return fmt.Errorf("set no delay failed: %w", err)
	}

	return nil
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

type Listener struct {
	listener net.Listener
	opts     *transport.ServerOptions
	codec    *transport.FrameCodec

	mu     sync.Mutex
	closed bool
}

var _ transport.Listener = (*Listener)(nil)

func (l *Listener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	if l.isClosed() {
		return nil, transport.ErrListenerClosed
	}

	if dl, ok := l.listener.(deadliner); ok {
		stop, err := transport.WatchContext(ctx, 0, dl.SetDeadline)
		if errors.Is(err, net.ErrClosed) {
			return nil, transport.ErrListenerClosed
		}
		if err != nil {
			return nil, fmt.Errorf("set accept deadline failed: %w", err)
		}
		defer stop()
	}

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if l.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil, transport.ErrListenerClosed
			}

			if ctxErr := transport.ContextError(ctx, err); ctxErr != err {
				return nil, ctxErr
			}

			return nil, fmt.Errorf("accept connection failed: %w", err)
		}

		if err := tuneConn(conn, true, 30*time.Second); err != nil {
			_ = conn.Close()
			continue
		}

		return newConn(conn, l.codec, l.opts.ReadBufferSize, l.opts.WriteTimeout), nil
	}
}

func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	if err := l.listener.Close(); err != nil {
		return fmt.Errorf("close listener failed: %w", err)
	}

	return nil
}

func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}
