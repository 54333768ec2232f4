package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/famney/famney/internal/cli"
	"github.com/famney/famney/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		Args: cobra.NoArgs,
		RunE: a.runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	dbPath := a.cfg.Database.Path
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	slog.Debug("Starting database migration", "database", dbPath, "status_only", status)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		_, err := fmt.Fprintf(out, "%s\nDatabase:        %s\nCurrent version: %d\nLatest version:  %d\n",
			cli.FormatTitle("Database Migration Status"), dbPath, current, storage.ExpectedSchemaVersion)
		return err
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	msg := fmt.Sprintf("Database migrated from version %d to %d", current, storage.ExpectedSchemaVersion)
	if current == storage.ExpectedSchemaVersion {
		msg = "Database schema is up to date"
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess(msg))
	return err
}
