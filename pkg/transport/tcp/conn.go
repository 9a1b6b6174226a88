// Kunhua Huang 2026

package tcp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/transport"
)

// Conn frames messages over a byte stream (tcp or unix socket).
type Conn struct {
	conn         net.Conn
	reader       *bufio.Reader
	codec        *transport.FrameCodec
	writeTimeout time.Duration
}

var _ transport.Conn = (*Conn)(nil)

func newConn(conn net.Conn, codec *transport.FrameCodec, readBufferSize int, writeTimeout time.Duration) *Conn {
	if readBufferSize <= 0 {
		readBufferSize = 4 * 1024
	}

	return &Conn{
		conn:         conn,
		reader:       bufio.NewReaderSize(conn, readBufferSize),
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

	if err := writeFull(c.conn, data); err != nil {
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

	frame, err := c.codec.ReadFrame(c.reader)
	if err != nil {
		return nil, fmt.Errorf("read frame from connection failed: %w", transport.ContextError(ctx, err))
	}

	return frame, nil
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

func writeFull(w net.Conn, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
