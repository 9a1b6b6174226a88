package commands

import (
	"github.com/spf13/cobra"
)

// serve: bind an endpoint and echo every request back.
func serveCmd() *cobra.Command {
	var maxRate int64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bind an endpoint and reply to each request with its payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := serveMetrics()
			defer stop()

			srv, err := newEchoServer(cfg.Channel.Bind, maxRate)
			if err != nil {
				return err
			}
			defer srv.Stop()

			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().String("bind", "", "endpoint to bind (e.g. tcp://*:5555, ipc:///tmp/bus.sock, ws://:8080/bus)")
	cmd.Flags().Duration("handler-timeout", 0, "bound on handling one request")
	cmd.Flags().Int64Var(&maxRate, "max-rate", 0, "requests per second answered before replying with a rate limit error, 0 for no limit")
	return cmd
}
