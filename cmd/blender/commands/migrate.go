package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/internal/config"
	"github.com/flightblender/coordination-engine/internal/logger"
	"github.com/flightblender/coordination-engine/pkg/audit"
	"github.com/flightblender/coordination-engine/pkg/flightdecl/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations for the flight declaration and audit tables.

Against Postgres this applies the embedded golang-migrate migration set.
Against SQLite (local development) schema is managed by GORM's AutoMigrate
instead, so this command simply opens the database to trigger it.

Examples:
  # Run migrations with default config
  blender migrate

  # Run migrations with custom config
  blender migrate --config /etc/flight-blender/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	ctx := context.Background()

	if cfg.Database.Driver == "postgres" {
		if err := store.RunPostgresMigrations(ctx, cfg.Database.DSN, logger.With()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migrations completed successfully (database driver: postgres)")
		return nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	declStore := store.New(db)
	if err := declStore.AutoMigrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	auditStore := audit.New(db)
	if err := auditStore.AutoMigrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migrations completed successfully (database driver: %s)\n", cfg.Database.Driver)
	return nil
}
