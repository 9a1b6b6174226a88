// Kunhua Huang 2026

package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/transport"
)

// Transport serves the ws:// scheme. Each frame travels as one binary
// websocket message, so the websocket layer does the delimiting.
type Transport struct{}

var _ transport.Transport = (*Transport)(nil)

func init() {
	transport.Register(transport.SchemeWebSocket, &Transport{})
}

func (t *Transport) Dial(ctx context.Context, ep transport.Endpoint, opts *transport.ClientOptions) (transport.Conn, error) {
	dialer := &websocket.Dialer{
		NetDialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: opts.KeepAlivePeriod,
		}).DialContext,
		HandshakeTimeout: opts.DialTimeout,
		ReadBufferSize:   opts.ReadBufferSize,
		WriteBufferSize:  opts.WriteBufferSize,
	}

	conn, resp, err := dialer.DialContext(ctx, ep.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s failed: handshake status %s: %w", ep, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s failed: %w", ep, err)
	}

	codec := transport.NewFrameCodec(opts.Compress, opts.MaxFrameSize)
	return newConn(conn, codec, opts.WriteTimeout), nil
}

func (t *Transport) Listen(ctx context.Context, ep transport.Endpoint, opts *transport.ServerOptions) (transport.Listener, error) {
	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", ep.HostPort())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", ep, err)
	}

	backlog := opts.AcceptBacklog
	if backlog <= 0 {
		backlog = 1
	}

	l := &Listener{
		ln:     ln,
		path:   ep.Path,
		codec:  transport.NewFrameCodec(opts.Compress, opts.MaxFrameSize),
		opts:   opts,
		conns:  make(chan *websocket.Conn, backlog),
		done:   make(chan struct{}),
		logger: log.Logger.With().Str("module", "transport.ws").Logger(),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: opts.HandshakeTimeout,
			ReadBufferSize:   opts.ReadBufferSize,
			WriteBufferSize:  opts.WriteBufferSize,
			// peers are not browsers
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(ep.Path, l.handleUpgrade)

	l.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: opts.HandshakeTimeout,
	}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error().Err(err).Str("addr", ln.Addr().String()).Msg("http serve stopped")
		}
	}()

	return l, nil
}

type Listener struct {
	ln       net.Listener
	srv      *http.Server
	path     string
	codec    *transport.FrameCodec
	opts     *transport.ServerOptions
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	done     chan struct{}
	once     sync.Once
	logger   zerolog.Logger
}

var _ transport.Listener = (*Listener)(nil)

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	select {
	case <-l.done:
		http.Error(w, "listener closed", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	select {
	case l.conns <- conn:
	case <-l.done:
		_ = conn.Close()
	default:
		l.logger.Warn().Str("remote", r.RemoteAddr).Msg("accept backlog full, dropping connection")
		_ = conn.Close()
	}
}

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case conn := <-l.conns:
		return newConn(conn, l.codec, l.opts.WriteTimeout), nil
	case <-l.done:
		return nil, transport.ErrListenerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if e := l.srv.Shutdown(shutdownCtx); e != nil {
			err = fmt.Errorf("close listener failed: %w", e)
		}

		for {
			select {
			case conn := <-l.conns:
				_ = conn.Close()
			default:
				return
			}
		}
	})
	return err
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Conn adapts a websocket connection to transport.Conn.
type Conn struct {
	conn         *websocket.Conn
	codec        *transport.FrameCodec
	writeTimeout time.Duration
}

var _ transport.Conn = (*Conn)(nil)

func newConn(conn *websocket.Conn, codec *transport.FrameCodec, writeTimeout time.Duration) *Conn {
	conn.SetReadLimit(int64(protocol.HeaderLength) + int64(codec.MaxFrameSize()))

	return &Conn{
		conn:         conn,
		codec:        codec,
		writeTimeout: writeTimeout,
	}
}

func (c *Conn) WriteFrame(ctx context.Context, frame *protocol.Frame) error {
	data, err := c.codec.Encode(frame)
	if err != nil {
		return err
	}

	stop, err := transport.WatchContext(ctx, c.writeTimeout, c.conn.SetWriteDeadline)
	if err != nil {
		return fmt.Errorf("set write deadline failed: %w", err)
	}
	defer stop()

	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("write to connection failed: %w", transport.ContextError(ctx, err))
	}

	return nil
}

func (c *Conn) ReadFrame(ctx context.Context) (*protocol.Frame, error) {
	stop, err := transport.WatchContext(ctx, 0, c.conn.SetReadDeadline)
	if err != nil {
		return nil, fmt.Errorf("set read deadline failed: %w", err)
	}
	defer stop()

	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		if errors.Is(err, websocket.ErrReadLimit) {
			return nil, fmt.Errorf("read frame from connection failed: %w", transport.ErrFrameTooLarge)
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return nil, fmt.Errorf("read frame from connection failed: %w (%v)", io.EOF, closeErr)
		}
		return nil, fmt.Errorf("read frame from connection failed: %w", transport.ContextError(ctx, err))
	}

	if msgType != websocket.BinaryMessage {
		return nil, fmt.Errorf("%w: websocket message type %d", transport.ErrUnexpectedFrame, msgType)
	}

	return c.codec.Decode(data)
}

func (c *Conn) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("close connection failed: %w", err)
	}
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
