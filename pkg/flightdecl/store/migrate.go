package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for golang-migrate

	"github.com/flightblender/coordination-engine/pkg/flightdecl/store/migrations"
)

// RunPostgresMigrations applies the embedded golang-migrate migration set to
// the Postgres database at connString. It is the production-path schema
// manager; SQLite deployments use Store.AutoMigrate/audit.Store.AutoMigrate
// (GORM) instead, since golang-migrate's Postgres advisory locks have no
// SQLite equivalent and a single-file dev database has no concurrent-
// migrator race to guard against.
func RunPostgresMigrations(ctx context.Context, connString string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("opening database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
		DatabaseName:    "flightblender",
	})
	if err != nil {
		return fmt.Errorf("creating postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("creating migration source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	logger.Info("applying database migrations")
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	} else if err == migrate.ErrNoChange {
		logger.Info("no migrations to apply, database is up to date")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("reading migration version: %w", err)
	}
	if err == nil {
		logger.Info("schema migration version", "version", version, "dirty", dirty)
		if dirty {
			logger.Warn("database schema is in a dirty state, manual intervention may be required")
		}
	}

	return nil
}
