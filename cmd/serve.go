package main

import (
	"context"

	"github.com/spf13/cobra"

	"tempmon-server/internal/app"
)

func newServeCmd(e *env) *cobra.Command {
	var withMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.serve(cmd.Context(), withMigrate)
		},
	}
	cmd.Flags().BoolVar(&withMigrate, "migrate", false, "apply pending schema migrations before serving")
	return cmd
}

func (e *env) serve(ctx context.Context, withMigrate bool) error {
	e.logger.Info("starting",
		"app", appName,
		"version", version,
		"env", e.cfg.AppEnv,
		"log_level", e.cfg.LogLevel.String(),
	)
	err := app.Run(ctx, e.cfg, e.logger, app.Options{Version: version, Migrate: withMigrate})
	if err != nil {
		e.logger.Error("run failed", "err", err)
		return err
	}
	e.logger.Info("shutting down")
	return nil
}
