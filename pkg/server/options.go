// Kunhua Huang 2026

package server

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecstasoy/msgbus/pkg/channel"
	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/transport"
)

type serverOptions struct {
	codecType      protocol.CodecType
	compressType   protocol.CompressType
	handlerTimeout time.Duration
	listenOptions  []transport.ServerOption
	logger         zerolog.Logger
	observer       channel.Observer
}

func defaultServerOptions() *serverOptions {
	return &serverOptions{
		codecType:      protocol.CodecTypeRaw,
		compressType:   protocol.CompressTypeNone,
		handlerTimeout: 10 * time.Second,
		logger:         log.Logger.With().Str("module", "server").Logger(),
	}
}

type Option func(*serverOptions)

// WithCodec sets the codec hint stamped on replies and the compressor used
// for them.
func WithCodec(codec protocol.CodecType, compress protocol.CompressType) Option {
	return func(o *serverOptions) {
		o.codecType = codec
		o.compressType = compress
	}
}

// WithTimeout bounds each handler call. Zero disables the bound.
func WithTimeout(handler time.Duration) Option {
	return func(o *serverOptions) {
		o.handlerTimeout = handler
	}
}

func WithListenOptions(opts ...transport.ServerOption) Option {
	return func(o *serverOptions) {
		o.listenOptions = append(o.listenOptions, opts...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

func WithObserver(observer channel.Observer) Option {
	return func(o *serverOptions) {
		o.observer = observer
	}
}
