package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecstasoy/msgbus/pkg/config"
	"github.com/ecstasoy/msgbus/pkg/metrics"
)

var (
	configPath string

	v   *viper.Viper
	cfg *config.Config

	registry *prometheus.Registry
	stats    *metrics.Metrics
)

func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	v = config.NewViper()

	root := &cobra.Command{
		Use:           "msgbus",
		Short:         "Synchronous request/reply messaging over tcp, ipc and websocket",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd); err != nil {
				return err
			}

			loaded := config.Default()
			if configPath != "" {
				var err error
				if loaded, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if err := loaded.Override(v); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			cfg = loaded

			if err := setupLogging(cfg.Log, os.Stderr); err != nil {
				return err
			}

			registry = prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			stats = metrics.New(cfg.Metrics.Namespace)
			return stats.Register(registry)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "yaml config file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (console, json)")
	root.PersistentFlags().String("metrics-addr", "", "serve prometheus /metrics on this address (e.g. :9100)")
	root.PersistentFlags().String("codec", "", "payload codec hint (raw, json, protobuf)")
	root.PersistentFlags().String("compress", "", "body compression (none, gzip, snappy)")
	root.PersistentFlags().Uint32("max-frame-size", 0, "largest frame accepted, in bytes")
	root.PersistentFlags().Duration("dial-timeout", 0, "bound on establishing a connection")
	root.PersistentFlags().Duration("write-timeout", 0, "bound on handing one frame to the transport, 0 for none")

	root.AddCommand(serveCmd(), pingCmd(), loopbackCmd(), versionCmd())
	return root
}
