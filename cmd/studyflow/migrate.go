package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studyflow/internal/cli"
	"github.com/at-ishikawa/studyflow/internal/database"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if needed and apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			migrations, err := database.DefaultMigrations()
			if err != nil {
				return fmt.Errorf("database.DefaultMigrations() > %w", err)
			}

			handle, err := database.Initialize(cmd.Context(), cfg.Database, migrations)
			if err != nil {
				return err
			}
			defer handle.Close()

			return cli.NewPrinter(cmd.OutOrStdout()).MigrationResult(handle.Path(), handle.Applied())
		},
	}

	migrateCmd.AddCommand(newMigrateStatusCommand())
	return migrateCmd
}

func newMigrateStatusCommand() *cobra.Command {
	var format string

	command := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations without changing the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			migrations, err := database.DefaultMigrations()
			if err != nil {
				return fmt.Errorf("database.DefaultMigrations() > %w", err)
			}

			var statuses []database.MigrationStatus
			if _, err := os.Stat(cfg.Database.Path()); errors.Is(err, fs.ErrNotExist) {
				// Opening the file would create it.
				statuses = make([]database.MigrationStatus, 0, len(migrations))
				for _, m := range migrations {
					statuses = append(statuses, database.MigrationStatus{Version: m.Version, Description: m.Description})
				}
			} else {
				db, err := database.OpenReadOnly(cfg.Database)
				if err != nil {
					return fmt.Errorf("database.OpenReadOnly() > %w", err)
				}
				defer db.Close()

				statuses, err = database.MigrationStatuses(cmd.Context(), db, migrations)
				if err != nil {
					return fmt.Errorf("database.MigrationStatuses() > %w", err)
				}
			}

			return cli.NewPrinter(cmd.OutOrStdout()).MigrationStatuses(statuses, format)
		},
	}
	command.Flags().StringVar(&format, "format", cli.FormatTable, "output format: table or yaml")
	return command
}
