// File: cmd/strata/root.go
package main

import (
	"strata/internal/flags"
	"strata/internal/logger"
	"strata/internal/metrics"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	debug       bool
	metricsFile string
}

func newRootCmd() *cobra.Command {
	cmdFlags := rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Strata is a command-line gateway to S3-compatible object storage.",
		Long: `A unified CLI for AWS S3, Linode Object Storage, Backblaze B2 and Google
Cloud Storage. Browse buckets as a filesystem, run S3 Select queries against
objects in place, or load them into an in-memory DuckDB table for SQL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewLogger(cmdFlags.debug)

			cfgManager, err := newConfigManager()
			if err != nil {
				return err
			}
			app, err := newApp(cfgManager, cmd.InOrStdin(), cmd.ErrOrStderr(), log)
			if err != nil {
				log.Error("Failed to initialize application", "error", err)
				return err
			}
			cmd.SetContext(contextWithApp(cmd.Context(), app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cmdFlags.metricsFile == "" {
				return nil
			}
			return metrics.WriteTextfile(cmdFlags.metricsFile)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cmdFlags.debug, flags.Debug, flags.DebugShort, false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cmdFlags.metricsFile, flags.MetricsFile, "", "Write Prometheus metrics to this textfile on exit")

	rootCmd.AddCommand(
		newConfigCmd(),
		newStorageCmd(),
		newFsCmd(),
		newQueryCmd(),
		newCheckCmd(),
	)
	return rootCmd
}
