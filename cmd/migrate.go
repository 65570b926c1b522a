package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tempmon-server/internal/db"
	"tempmon-server/internal/migrate"
)

func newMigrateCmd(e *env) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the measurement tables for development and tests",
		Long: `Apply the embedded schema migrations for the configured driver.

In production the tables belong to the ingestion service; this command exists
to bootstrap a local SQLite file or a throwaway PostgreSQL instance.

  tempmon-server migrate --dry-run   # list pending migrations
  tempmon-server migrate             # apply them`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(conn); err != nil {
					e.logger.Error("db close", "error", err)
				}
			}()

			out := cmd.OutOrStdout()
			faint := color.New(color.Faint)

			if dryRun {
				pending, err := migrate.Pending(cmd.Context(), conn)
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					color.New(color.FgGreen).Fprintf(out, "✓ Database is up to date (%s)\n", conn.DriverName())
					return nil
				}
				color.New(color.FgYellow).Fprintf(out, "%d pending migration(s) (%s)\n", len(pending), conn.DriverName())
				for _, m := range pending {
					fmt.Fprintf(out, "  %s\n", faint.Sprint(m.File()))
				}
				return nil
			}

			applied, err := migrate.Run(cmd.Context(), conn, e.logger)
			for _, m := range applied {
				color.New(color.FgGreen).Fprintf(out, "✓ Applied %s\n", m.File())
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				color.New(color.FgGreen).Fprintf(out, "✓ Database is up to date (%s)\n", conn.DriverName())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}
