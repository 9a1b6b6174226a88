package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ecstasoy/msgbus/pkg/protocol"
)

// Version is set at build time with -ldflags "-X ...commands.Version=v1.2.3".
var Version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "msgbus %s (protocol v%d, %s)\n", Version, protocol.ProtocolVersion, runtime.Version())
			return nil
		},
	}
}
