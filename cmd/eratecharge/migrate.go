package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bher20/eratecharge/internal/config"
	"github.com/bher20/eratecharge/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the ledger schema",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if cfg.DB.Driver != config.DriverSQLite && cfg.DB.Driver != config.DriverPostgres {
			return fmt.Errorf("migrations need the sqlite or postgres driver (got %q)", cfg.DB.Driver)
		}
		return nil
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate.Up(cmd.Context(), cfg.DB.Driver, cfg.DB.DSN)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate.Down(cmd.Context(), cfg.DB.Driver, cfg.DB.DSN)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate.Status(cmd.Context(), cfg.DB.Driver, cfg.DB.DSN)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
