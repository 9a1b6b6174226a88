// Kunhua Huang 2026

package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ecstasoy/msgbus/pkg/channel"
	"github.com/ecstasoy/msgbus/pkg/interceptor"
	"github.com/ecstasoy/msgbus/pkg/transport"
)

// Server is a replier that answers every request with its handler. It
// serves one peer at a time.
type Server struct {
	addr         string
	opts         *serverOptions
	handler      interceptor.Handler
	interceptors []interceptor.Interceptor
	ch           *channel.Channel

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

func New(addr string, handler interceptor.Handler, opts ...Option) *Server {
	options := defaultServerOptions()
	for _, o := range opts {
		o(options)
	}

	chOpts := []channel.Option{
		channel.WithCodec(options.codecType),
		channel.WithCompress(options.compressType),
		channel.WithListenOptions(options.listenOptions...),
		channel.WithLogger(options.logger),
	}
	if options.observer != nil {
		chOpts = append(chOpts, channel.WithObserver(options.observer))
	}

	return &Server{
		addr:    addr,
		opts:    options,
		handler: handler,
		ch:      channel.NewReplier(chOpts...),
	}
}

// Use adds interceptors to the server's interceptor chain.
// usage:
//
//	srv.Use(
//		interceptor.Recovery(logger),
//		interceptor.Logging(logger),
//		interceptor.Metrics(m),
//	)
//
// The interceptors will be executed in the order they are added.
// Use must be called before Serve.
func (s *Server) Use(interceptors ...interceptor.Interceptor) {
	s.interceptors = append(s.interceptors, interceptors...)
}

// Listen binds the endpoint without serving yet, so Addr is known before
// Serve runs.
func (s *Server) Listen(ctx context.Context) error {
	return s.ch.Bind(ctx, s.addr)
}

// Addr is the bound endpoint, with the port resolved.
func (s *Server) Addr() string {
	return s.ch.Addr()
}

// Serve answers requests until ctx is done or Stop is called, then returns
// nil. A peer that goes away is logged and the next peer is served.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return channel.ErrClosed
	}
	s.cancel = cancel
	s.mu.Unlock()

	if s.ch.State() == channel.StateUnconnected {
		if err := s.Listen(ctx); err != nil {
			return err
		}
	}

	handler := interceptor.NewChain(s.interceptors...).Then(s.handler)
	logger := s.opts.logger

	logger.Info().Str("addr", s.Addr()).Msg("serving")

	for {
		msg, err := s.ch.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, channel.ErrClosed) {
				logger.Info().Msg("server stopped")
				return nil
			}

			if errors.Is(err, channel.ErrReceive) {
				logger.Warn().Err(err).Msg("receive failed, waiting for next peer")
				continue
			}

			return fmt.Errorf("serve %s: %w", s.addr, err)
		}

		s.handle(ctx, handler, msg)
	}
}

func (s *Server) handle(ctx context.Context, handler interceptor.Handler, msg *channel.Message) {
	reqCtx := ctx
	if s.opts.handlerTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.opts.handlerTimeout)
		defer cancel()
	}

	reply, err := handler(reqCtx, msg.Payload)
	if err == nil && len(reply) == 0 {
		err = ErrEmptyReply
	}

	var sendErr error
	if err != nil {
		sendErr = s.ch.ReplyError(ctx, errors.New(mapError(err)))
	} else {
		sendErr = s.ch.Send(ctx, reply)
		// the request still needs an answer
		if errors.Is(sendErr, transport.ErrFrameTooLarge) {
			sendErr = s.ch.ReplyError(ctx, sendErr)
		}
	}

	if sendErr != nil {
		s.opts.logger.Warn().Err(sendErr).Uint64("seq", msg.Sequence).Msg("reply failed")
	}
}

// Stop ends Serve and releases the endpoint.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	return s.ch.Close()
}
