package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ecstasoy/msgbus/pkg/config"
)

// flagKeys maps flag names to config keys. A flag given on the command line
// beats the environment and the config file.
var flagKeys = map[string]string{
	"bind":            config.KeyBind,
	"connect":         config.KeyConnect,
	"codec":           config.KeyCodec,
	"compress":        config.KeyCompress,
	"timeout":         config.KeyCallTimeout,
	"handler-timeout": config.KeyHandlerTimeout,
	"dial-timeout":    config.KeyDialTimeout,
	"write-timeout":   config.KeyWriteTimeout,
	"max-frame-size":  config.KeyMaxFrameSize,
	"count":           config.KeyBenchCount,
	"rate":            config.KeyBenchRate,
	"burst":           config.KeyBenchBurst,
	"log-level":       config.KeyLogLevel,
	"log-format":      config.KeyLogFormat,
	"metrics-addr":    config.KeyMetricsAddr,
}

// bindFlags binds the flags of the command being run. Binding happens per
// run because several subcommands define flags for the same key.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}
