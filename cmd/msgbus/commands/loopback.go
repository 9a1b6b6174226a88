package commands

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// loopback: run a replier and a benchmarking requester in one process.
func loopbackCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "loopback",
		Short: "Benchmark a replier and a requester inside one process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := serveMetrics()
			defer stop()

			srv, err := newEchoServer(addr, 0)
			if err != nil {
				return err
			}
			if err := srv.Listen(cmd.Context()); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Serve(gctx)
			})
			g.Go(func() error {
				defer cancel()

				c, err := newClient(dialable(srv.Addr()))
				if err != nil {
					return err
				}
				defer c.Close()

				return runBench(gctx, c, cmd.OutOrStdout())
			})

			err = g.Wait()
			if stopErr := srv.Stop(); stopErr != nil {
				log.Warn().Err(stopErr).Msg("stop server")
			}
			return err
		},
	}

	addBenchFlags(cmd)
	cmd.Flags().StringVar(&addr, "bind", "tcp://127.0.0.1:0", "endpoint for the in-process replier")
	return cmd
}

// dialable turns a wildcard bind address into one a requester can dial.
func dialable(addr string) string {
	for _, wildcard := range []string{"://[::]:", "://0.0.0.0:", "://:"} {
		if strings.Contains(addr, wildcard) {
			return strings.Replace(addr, wildcard, "://127.0.0.1:", 1)
		}
	}
	return addr
}
