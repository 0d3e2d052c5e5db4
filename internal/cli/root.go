package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/memstage/internal/config"
	"github.com/me/memstage/internal/logging"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagSkip      bool

	cfg    config.Config
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the memstage CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "memstage",
		Short: "memstage — per-stage memory accounting for long-running compute",
		Long:  "memstage measures peak and delta memory (CPU and accelerator) across the init/train/eval/test stages of a computation and reports the figures.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = flagLogLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = flagLogFormat
			}
			if flagSkip {
				cfg.SkipMemoryMetrics = true
			}
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			logger = logging.New(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Shorthand for --log-level=debug")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().BoolVar(&flagSkip, "skip-memory-metrics", false, "Disable all memory tracking (every operation becomes a no-op)")

	root.AddCommand(
		newSelftestCmd(),
		newServeCmd(),
	)

	return root
}
