package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/ecstasoy/msgbus/pkg/bench"
	"github.com/ecstasoy/msgbus/pkg/client"
	"github.com/ecstasoy/msgbus/pkg/interceptor"
	"github.com/ecstasoy/msgbus/pkg/ratelimiter"
	"github.com/ecstasoy/msgbus/pkg/server"
)

func echo(_ context.Context, payload []byte) ([]byte, error) {
	return payload, nil
}

// newEchoServer builds the replier used by serve and loopback. maxRate
// limits requests per second, 0 for no limit.
func newEchoServer(addr string, maxRate int64) (*server.Server, error) {
	codecType, err := cfg.Channel.CodecType()
	if err != nil {
		return nil, err
	}
	compressType, err := cfg.Channel.CompressType()
	if err != nil {
		return nil, err
	}

	logger := log.Logger.With().Str("module", "server").Logger()

	srv := server.New(addr, echo,
		server.WithCodec(codecType, compressType),
		server.WithTimeout(cfg.Channel.HandlerTimeout.Duration),
		server.WithListenOptions(cfg.Transport.ServerOptions()...),
		server.WithLogger(logger),
		server.WithObserver(stats),
	)
	srv.Use(
		interceptor.Recovery(logger),
		interceptor.Logging(logger),
		interceptor.Metrics(stats),
	)

	if maxRate > 0 {
		limiter, err := ratelimiter.NewTokenBucketLimiter(maxRate, maxRate)
		if err != nil {
			return nil, err
		}
		srv.Use(interceptor.RateLimit(limiter))
	}

	return srv, nil
}

func newClient(addr string) (*client.Client, error) {
	codecType, err := cfg.Channel.CodecType()
	if err != nil {
		return nil, err
	}
	compressType, err := cfg.Channel.CompressType()
	if err != nil {
		return nil, err
	}

	return client.New(addr,
		client.WithCodec(codecType, compressType),
		client.WithTimeout(cfg.Channel.CallTimeout.Duration),
		client.WithDialOptions(cfg.Transport.ClientOptions()...),
		client.WithLogger(log.Logger.With().Str("module", "client").Logger()),
		client.WithObserver(stats),
		client.WithRoundTripObserver(stats),
	), nil
}

// runBench drives cfg.Bench.Count round trips over c and prints the report.
func runBench(ctx context.Context, c *client.Client, out io.Writer) error {
	codecType, err := cfg.Channel.CodecType()
	if err != nil {
		return err
	}

	payload, err := bench.Payload(codecType)
	if err != nil {
		return err
	}

	limiter, err := ratelimiter.New(cfg.Bench.Rate, cfg.Bench.Burst)
	if err != nil {
		return err
	}

	if err := c.Dial(ctx); err != nil {
		return err
	}

	runner := bench.NewRunner(c, cfg.Bench.Count, payload)
	runner.Limiter = limiter

	report, err := runner.Run(ctx)
	if report != nil {
		fmt.Fprintln(out, report)
	}
	return err
}
