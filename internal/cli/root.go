// Package cli wires the fxrisk commands together.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

func NewRootCmd() (*cobra.Command, error) {
	return newRootCmd(env.ToMap(os.Environ()))
}

func newRootCmd(environ map[string]string) (*cobra.Command, error) {
	rc, err := loadRootConfig(environ)
	if err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:           "fxrisk",
		Short:         "fxrisk: FX market risk configuration and raw data ingestion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.Env, "env", rc.Env, "Environment: dev|prod (FXRISK_ENV)")
	cmd.PersistentFlags().StringVar(&rc.ConfigDir, "config-dir", rc.ConfigDir, "Directory holding pipeline_config.yaml and the environment overrides (FXRISK_CONFIG_DIR)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", rc.LogLevel, "Log level: debug|info|warn|error (FXRISK_LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&rc.LogJSON, "log-json", rc.LogJSON, "Log JSON instead of console output")
	cmd.PersistentFlags().BoolVar(&rc.NoColor, "no-color", rc.NoColor, "Disable colored output")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", rc.DBPath, "SQLite run journal (FXRISK_DB)")
	cmd.PersistentFlags().StringVar(&rc.MetricsFile, "metrics-file", rc.MetricsFile, "Write Prometheus textfile metrics here after a job")

	// Subcommands
	cmd.AddCommand(
		newConfigCmd(rc),
		newExtractCmd(rc),
		newPositionsCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fxrisk %s\n", Version)
		},
	})

	return cmd, nil
}

// Execute runs the root command; ctx is cancelled on SIGINT/SIGTERM by main.
func Execute(ctx context.Context) error {
	cmd, err := NewRootCmd()
	if err != nil {
		return err
	}
	return cmd.ExecuteContext(ctx)
}
