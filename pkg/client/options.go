package client

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecstasoy/msgbus/pkg/channel"
	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/transport"
)

// RoundTripObserver is told how long each Call took, including failures.
type RoundTripObserver interface {
	ObserveRoundTrip(elapsed time.Duration, err error)
}

type clientOptions struct {
	codecType    protocol.CodecType
	compressType protocol.CompressType
	callTimeout  time.Duration
	dialOptions  []transport.ClientOption
	logger       zerolog.Logger
	observer     channel.Observer
	roundTrips   RoundTripObserver
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		codecType:    protocol.CodecTypeJSON,
		compressType: protocol.CompressTypeNone,
		callTimeout:  5 * time.Second,
		logger:       log.Logger.With().Str("module", "client").Logger(),
	}
}

type Option func(*clientOptions)

func WithCodec(codec protocol.CodecType, compress protocol.CompressType) Option {
	return func(o *clientOptions) {
		o.codecType = codec
		o.compressType = compress
	}
}

// WithTimeout bounds each Call. Zero means calls wait as long as their
// context allows.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.callTimeout = timeout
	}
}

func WithDialOptions(opts ...transport.ClientOption) Option {
	return func(o *clientOptions) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func WithObserver(observer channel.Observer) Option {
	return func(o *clientOptions) {
		o.observer = observer
	}
}

func WithRoundTripObserver(observer RoundTripObserver) Option {
	return func(o *clientOptions) {
		o.roundTrips = observer
	}
}
