package channel

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/transport"
)

// Observer is notified after every frame a channel sends or receives.
// Implementations must be safe for concurrent use by several channels.
type Observer interface {
	ObserveSend(role Role, bytes int, elapsed time.Duration, err error)
	ObserveReceive(role Role, bytes int, elapsed time.Duration, err error)
}

type options struct {
	codecType     protocol.CodecType
	compressType  protocol.CompressType
	dialOptions   []transport.ClientOption
	listenOptions []transport.ServerOption
	logger        zerolog.Logger
	observer      Observer
}

func defaultOptions() *options {
	return &options{
		codecType:    protocol.CodecTypeRaw,
		compressType: protocol.CompressTypeNone,
		logger:       log.Logger.With().Str("module", "channel").Logger(),
	}
}

type Option func(*options)

// WithCodec stamps outgoing frames with a payload codec hint.
func WithCodec(codec protocol.CodecType) Option {
	return func(o *options) {
		o.codecType = codec
	}
}

func WithCompress(compress protocol.CompressType) Option {
	return func(o *options) {
		o.compressType = compress
	}
}

func WithDialOptions(opts ...transport.ClientOption) Option {
	return func(o *options) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}

func WithListenOptions(opts ...transport.ServerOption) Option {
	return func(o *options) {
		o.listenOptions = append(o.listenOptions, opts...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}
