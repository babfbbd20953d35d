package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bher20/eratecharge/internal/config"
	"github.com/bher20/eratecharge/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "eratecharge",
	Short: "Compute seasonal utility charges",
	Long: `eratecharge bills a consumed quantity against a two-tier plan: a summer
rate inside an inclusive summer window, and a regular rate plus a flat service
charge outside it.

It can run as an HTTP service with an optional ledger of computed charges,
or compute a single charge from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := logging.Initialize(cfg.Logging); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}
