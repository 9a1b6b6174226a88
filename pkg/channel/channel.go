// Kunhua Huang 2026

package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/transport"
	_ "github.com/ecstasoy/msgbus/pkg/transport/tcp"
	_ "github.com/ecstasoy/msgbus/pkg/transport/ws"
)

// Message is one received payload. The caller owns Payload; the channel
// keeps no reference to it.
type Message struct {
	Payload  []byte
	Codec    protocol.CodecType
	Sequence uint64
}

type Channel struct {
	role   Role
	opts   *options
	logger zerolog.Logger

	// opMu is held for the whole of Connect, Bind, Send and Receive so the
	// alternation cannot be interleaved. Close never takes it.
	opMu sync.Mutex

	mu       sync.Mutex // protects the fields below
	state    State
	conn     transport.Conn
	listener transport.Listener
	addr     string
	seq      uint64
}

func New(role Role, opts ...Option) *Channel {
	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}

	return &Channel{
		role:   role,
		opts:   options,
		logger: options.logger.With().Str("role", role.String()).Logger(),
		state:  StateUnconnected,
	}
}

func NewRequester(opts ...Option) *Channel {
	return New(Requester, opts...)
}

func NewReplier(opts ...Option) *Channel {
	return New(Replier, opts...)
}

func (c *Channel) Role() Role {
	return c.role
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Addr is the endpoint the channel is connected or bound to. For a bound
// channel it carries the resolved port, so it can be passed to Connect.
func (c *Channel) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// Connect dials the peer at addr. On failure the channel stays Unconnected.
func (c *Channel) Connect(ctx context.Context, addr string) error {
	const op = "connect"

	if c.role != Requester {
		return newError(KindProtocol, op, addr, ErrWrongRole)
	}

	if !c.opMu.TryLock() {
		return newError(KindProtocol, op, addr, ErrBusy)
	}
	defer c.opMu.Unlock()

	if err := c.checkUnconnected(); err != nil {
		return newError(KindConnection, op, addr, err)
	}

	dialOpts := append([]transport.ClientOption{transport.WithCompress(c.opts.compressType)}, c.opts.dialOptions...)

	conn, err := transport.Dial(ctx, addr, dialOpts...)
	if err != nil {
		c.logger.Debug().Err(err).Str("addr", addr).Msg("connect failed")
		return newError(KindConnection, op, addr, err)
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		_ = conn.Close()
		return newError(KindConnection, op, addr, ErrClosed)
	}
	c.conn = conn
	c.addr = addr
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info().Str("addr", addr).Str("remote", conn.RemoteAddr().String()).Msg("connected")
	return nil
}

// Bind listens on addr. The peer is accepted by the first Receive; further
// peers wait in the listener backlog until the current one disconnects.
func (c *Channel) Bind(ctx context.Context, addr string) error {
	const op = "bind"

	if c.role != Replier {
		return newError(KindProtocol, op, addr, ErrWrongRole)
	}

	if !c.opMu.TryLock() {
		return newError(KindProtocol, op, addr, ErrBusy)
	}
	defer c.opMu.Unlock()

	if err := c.checkUnconnected(); err != nil {
		return newError(KindConnection, op, addr, err)
	}

	ep, err := transport.ParseEndpoint(addr)
	if err != nil {
		return newError(KindConnection, op, addr, err)
	}

	listenOpts := append([]transport.ServerOption{transport.WithServerCompress(c.opts.compressType)}, c.opts.listenOptions...)

	ln, err := transport.Listen(ctx, addr, listenOpts...)
	if err != nil {
		return newError(KindConnection, op, addr, err)
	}

	bound := transport.FormatAddr(ep.Scheme, ln.Addr(), ep.Path)

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		_ = ln.Close()
		return newError(KindConnection, op, addr, ErrClosed)
	}
	c.listener = ln
	c.addr = bound
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info().Str("addr", bound).Msg("bound")
	return nil
}

func (c *Channel) checkUnconnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateUnconnected:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrAlreadyConnected
	}
}

// Send transmits payload as one message and returns once the transport has
// accepted it. It does not wait for the peer.
func (c *Channel) Send(ctx context.Context, payload []byte) error {
	const op = "send"

	if !c.opMu.TryLock() {
		return newError(KindProtocol, op, c.Addr(), ErrBusy)
	}
	defer c.opMu.Unlock()

	c.mu.Lock()
	addr := c.addr
	if kind, err := checkSend(c.role, c.state); err != nil {
		c.mu.Unlock()
		return newError(kind, op, addr, err)
	}

	if len(payload) == 0 {
		c.mu.Unlock()
		return newError(KindSend, op, addr, ErrEmptyPayload)
	}

	var frame *protocol.Frame
	if c.role == Requester {
		frame = protocol.NewRequestFrame(c.seq+1, c.opts.codecType, payload)
	} else {
		frame = protocol.NewReplyFrame(c.seq, c.opts.codecType, payload)
	}
	conn := c.conn
	c.mu.Unlock()

	return c.writeFrame(ctx, op, addr, conn, frame)
}

// ReplyError answers the pending request with an error frame instead of a
// payload. The requester's Receive fails with a RemoteError.
func (c *Channel) ReplyError(ctx context.Context, cause error) error {
	const op = "reply-error"

	if c.role != Replier {
		return newError(KindProtocol, op, c.Addr(), ErrWrongRole)
	}

	if !c.opMu.TryLock() {
		return newError(KindProtocol, op, c.Addr(), ErrBusy)
	}
	defer c.opMu.Unlock()

	c.mu.Lock()
	addr := c.addr
	if kind, err := checkSend(c.role, c.state); err != nil {
		c.mu.Unlock()
		return newError(kind, op, addr, err)
	}

	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	frame := protocol.NewErrorFrame(c.seq, message)
	conn := c.conn
	c.mu.Unlock()

	return c.writeFrame(ctx, op, addr, conn, frame)
}

func (c *Channel) writeFrame(ctx context.Context, op, addr string, conn transport.Conn, frame *protocol.Frame) error {
	start := time.Now()
	err := conn.WriteFrame(ctx, frame)
	c.observeSend(len(frame.Body), time.Since(start), err)

	if err != nil {
		// nothing reached the wire, the connection is still usable
		if errors.Is(err, transport.ErrFrameTooLarge) {
			return newError(KindSend, op, addr, err)
		}
		return newError(KindSend, op, addr, c.drop(conn, err))
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return newError(KindSend, op, addr, ErrClosed)
	}
	if c.role == Requester {
		c.seq = frame.Sequence
		c.state = StateAwaitingReply
	} else {
		c.state = StateConnected
	}
	c.mu.Unlock()

	c.logger.Debug().
		Str("type", frame.Type.String()).
		Uint64("seq", frame.Sequence).
		Int("bytes", len(frame.Body)).
		Msg("frame sent")

	return nil
}

// Receive blocks until one complete message arrives and returns its bytes.
// The returned slice is an owned copy.
func (c *Channel) Receive(ctx context.Context) ([]byte, error) {
	msg, err := c.ReceiveMessage(ctx)
	if err != nil {
		return nil, err
	}
	return msg.Payload, nil
}

// ReceiveMessage is Receive with the frame's codec hint and sequence.
func (c *Channel) ReceiveMessage(ctx context.Context) (*Message, error) {
	const op = "receive"

	if !c.opMu.TryLock() {
		return nil, newError(KindProtocol, op, c.Addr(), ErrBusy)
	}
	defer c.opMu.Unlock()

	c.mu.Lock()
	addr := c.addr
	if kind, err := checkReceive(c.role, c.state); err != nil {
		c.mu.Unlock()
		return nil, newError(kind, op, addr, err)
	}
	conn, ln := c.conn, c.listener
	c.mu.Unlock()

	if conn == nil {
		var err error
		if conn, err = c.accept(ctx, ln); err != nil {
			return nil, newError(KindReceive, op, addr, err)
		}
	}

	start := time.Now()
	frame, err := conn.ReadFrame(ctx)
	if err != nil {
		c.observeReceive(0, time.Since(start), err)
		return nil, newError(KindReceive, op, addr, c.drop(conn, peerError(err)))
	}
	c.observeReceive(len(frame.Body), time.Since(start), nil)

	if err := c.admit(conn, frame); err != nil {
		return nil, newError(KindReceive, op, addr, err)
	}

	c.logger.Debug().
		Str("type", frame.Type.String()).
		Uint64("seq", frame.Sequence).
		Int("bytes", len(frame.Body)).
		Msg("frame received")

	if frame.Type == protocol.MsgTypeError {
		return nil, newError(KindReceive, op, addr, &RemoteError{Sequence: frame.Sequence, Message: string(frame.Body)})
	}

	return &Message{
		Payload:  frame.Body,
		Codec:    frame.Codec,
		Sequence: frame.Sequence,
	}, nil
}

// accept waits for the replier's next peer.
func (c *Channel) accept(ctx context.Context, ln transport.Listener) (transport.Conn, error) {
	conn, err := ln.Accept(ctx)
	if err != nil {
		if errors.Is(err, transport.ErrListenerClosed) && c.State() == StateClosed {
			return nil, ErrClosed
		}
		return nil, err
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		_ = conn.Close()
		return nil, ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("peer accepted")
	return conn, nil
}

// admit checks an incoming frame against the role and the outstanding
// sequence and advances the state. A frame that breaks the alternation
// drops the connection.
func (c *Channel) admit(conn transport.Conn, frame *protocol.Frame) error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrClosed
	}

	var err error
	switch c.role {
	case Requester:
		switch {
		case frame.Type != protocol.MsgTypeReply && frame.Type != protocol.MsgTypeError:
			err = fmt.Errorf("%w: %s", ErrUnexpectedFrame, frame.Type)
		case frame.Sequence != c.seq:
			err = fmt.Errorf("%w: got %d, want %d", ErrSequenceMismatch, frame.Sequence, c.seq)
		default:
			c.state = StateConnected
		}
	case Replier:
		if frame.Type != protocol.MsgTypeRequest {
			err = fmt.Errorf("%w: %s", ErrUnexpectedFrame, frame.Type)
		} else {
			c.seq = frame.Sequence
			c.state = StateReplyPending
		}
	}
	c.mu.Unlock()

	if err != nil {
		return c.drop(conn, err)
	}
	return nil
}

// drop closes conn after a failure on it and resets the state. A requester
// must Connect again; a replier stays bound and accepts the next peer.
func (c *Channel) drop(conn transport.Conn, cause error) error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.conn == conn {
		c.conn = nil
		if c.role == Requester {
			c.state = StateUnconnected
		} else {
			c.state = StateConnected
		}
	}
	c.mu.Unlock()

	_ = conn.Close()
	c.logger.Warn().Err(cause).Msg("connection dropped")
	return cause
}

func peerError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrPeerDisconnected, err)
	}
	return err
}

// Close releases the connection and the listener. It is safe to call more
// than once and unblocks an operation in progress, which then fails.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	prev := c.state
	conn, ln := c.conn, c.listener
	c.state = StateClosed
	c.conn, c.listener = nil, nil
	c.mu.Unlock()

	var errs []error
	if conn != nil {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if ln != nil {
		if err := ln.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	c.logger.Info().Str("from", prev.String()).Msg("closed")
	return errors.Join(errs...)
}

func (c *Channel) observeSend(bytes int, elapsed time.Duration, err error) {
	if c.opts.observer != nil {
		c.opts.observer.ObserveSend(c.role, bytes, elapsed, err)
	}
}

func (c *Channel) observeReceive(bytes int, elapsed time.Duration, err error) {
	if c.opts.observer != nil {
		c.opts.observer.ObserveReceive(c.role, bytes, elapsed, err)
	}
}
