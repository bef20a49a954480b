package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/support-desk/internal/persistence"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(*cobra.Command, []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return persistence.RunMigrations(cfg.Postgres.DSN, logger)
		},
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Revert applied migrations",
		RunE: func(*cobra.Command, []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return persistence.RollbackMigrations(cfg.Postgres.DSN, rollbackSteps, logger)
		},
	}

	rollbackSteps int
)

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to revert")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
