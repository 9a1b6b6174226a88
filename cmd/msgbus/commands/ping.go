package commands

import (
	"github.com/spf13/cobra"
)

// ping: connect to a replier and measure round-trip latency.
func pingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Send requests to a replier and report round-trip latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := serveMetrics()
			defer stop()

			c, err := newClient(cfg.Channel.Connect)
			if err != nil {
				return err
			}
			defer c.Close()

			return runBench(cmd.Context(), c, cmd.OutOrStdout())
		},
	}

	addBenchFlags(cmd)
	cmd.Flags().String("connect", "", "endpoint to connect to (e.g. tcp://localhost:5555)")
	return cmd
}

func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("count", "n", 0, "number of round trips")
	cmd.Flags().Int64("rate", 0, "messages per second, 0 for as fast as possible")
	cmd.Flags().Int64("burst", 0, "messages allowed back to back when pacing")
	cmd.Flags().Duration("timeout", 0, "bound on one round trip")
}
