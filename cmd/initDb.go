/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pqms/internal/bootstrap"
	"pqms/internal/bootstrap/logging"
	"pqms/internal/errs"
	"pqms/internal/usecase/quality"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema and default system settings",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *quality.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := app.Initialize(ctx, svc); err != nil {
			logging.Error(ctx, "initialize database failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize database")
		}

		logging.Info(ctx, "init-db finished", slog.String("database_dsn", app.Config.Database.DSN))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s\n", app.Config.Database.DSN); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
