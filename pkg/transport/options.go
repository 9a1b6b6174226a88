package transport

import (
	"time"

	"github.com/ecstasoy/msgbus/pkg/protocol"
)

const DefaultMaxFrameSize = 10 * 1024 * 1024

// ------------------- Client Options -------------------

type ClientOptions struct {
	DialTimeout     time.Duration
	KeepAlive       bool
	KeepAlivePeriod time.Duration
	// WriteTimeout bounds a single frame write; zero blocks until the
	// transport accepts the frame or the context ends.
	WriteTimeout    time.Duration
	ReadBufferSize  int
	WriteBufferSize int
	MaxFrameSize    uint32
	Compress        protocol.CompressType
}

func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		DialTimeout:     5 * time.Second,
		KeepAlive:       true,
		KeepAlivePeriod: 30 * time.Second,

		WriteTimeout: 0,

		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 4 * 1024,

		MaxFrameSize: DefaultMaxFrameSize,
		Compress:     protocol.CompressTypeNone,
	}
}

type ClientOption func(*ClientOptions)

func WithDialTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.DialTimeout = timeout
	}
}

func WithWriteTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.WriteTimeout = timeout
	}
}

func WithKeepAlive(keepAlive bool, period time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.KeepAlive = keepAlive
		opts.KeepAlivePeriod = period
	}
}

func WithBufferSize(readSize, writeSize int) ClientOption {
	return func(opts *ClientOptions) {
		opts.ReadBufferSize = readSize
		opts.WriteBufferSize = writeSize
	}
}

func WithMaxFrameSize(size uint32) ClientOption {
	return func(opts *ClientOptions) {
		opts.MaxFrameSize = size
	}
}

func WithCompress(compress protocol.CompressType) ClientOption {
	return func(opts *ClientOptions) {
		opts.Compress = compress
	}
}

// ------------------- Server Options -------------------

type ServerOptions struct {
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
	MaxFrameSize     uint32
	Compress         protocol.CompressType
	// AcceptBacklog is how many upgraded connections may wait for Accept
	// on transports that accept in the background.
	AcceptBacklog int
}

func DefaultServerOptions() *ServerOptions {
	return &ServerOptions{
		WriteTimeout:     0,
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   4 * 1024,
		WriteBufferSize:  4 * 1024,
		MaxFrameSize:     DefaultMaxFrameSize,
		Compress:         protocol.CompressTypeNone,
		AcceptBacklog:    8,
	}
}

type ServerOption func(*ServerOptions)

func WithServerWriteTimeout(timeout time.Duration) ServerOption {
	return func(opts *ServerOptions) {
		opts.WriteTimeout = timeout
	}
}

func WithHandshakeTimeout(timeout time.Duration) ServerOption {
	return func(opts *ServerOptions) {
		opts.HandshakeTimeout = timeout
	}
}

func WithServerBufferSize(readSize, writeSize int) ServerOption {
	return func(opts *ServerOptions) {
		opts.ReadBufferSize = readSize
		opts.WriteBufferSize = writeSize
	}
}

func WithServerMaxFrameSize(size uint32) ServerOption {
	return func(opts *ServerOptions) {
		opts.MaxFrameSize = size
	}
}

func WithServerCompress(compress protocol.CompressType) ServerOption {
	return func(opts *ServerOptions) {
		opts.Compress = compress
	}
}
