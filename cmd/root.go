package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"tempmon-server/internal/config"
	"tempmon-server/internal/logging"
)

const appName = "tempmon-server"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

// env is filled by the root PersistentPreRunE before any subcommand runs.
type env struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var envFiles []string

	root := &cobra.Command{
		Use:   appName,
		Short: "Read-only HTTP API over recorded temperature measurements",
		Long: `tempmon-server serves current readings, history, aggregates and alerts
from the measurements, hourly_averages and daily_averages tables.

Configuration is read from the environment, optionally seeded from .env:

  DB_DRIVER          postgres (default) or sqlite3
  POSTGRES_HOST/PORT/DB/USER/PASSWORD, POSTGRES_SSLMODE
  SQLITE_PATH        database file for the sqlite3 driver
  DB_DSN             full connection string, overrides the above
  HTTP_ADDR          listen address (default 0.0.0.0:5000)
  DEBUG, LOG_LEVEL, APP_ENV

Running without a subcommand is the same as 'serve'.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			if err := config.LoadDotEnv(envFiles...); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = logging.New(cfg, version, appName)
			slog.SetDefault(e.logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.serve(cmd.Context(), false)
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv file(s) to load (default .env)")

	root.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newVersionCmd(),
	)
	return root
}
