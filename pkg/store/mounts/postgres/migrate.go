package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/store/mounts/postgres/migrations"
)

// runMigrations executes database migrations using golang-migrate.
// golang-migrate takes a PostgreSQL advisory lock, so concurrent daemons
// sharing one database cannot run migrations at the same time.
func runMigrations(ctx context.Context, connString string) error {
	logger.Info("running mount store migrations")

	// golang-migrate requires a database/sql connection
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "mounts_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err == migrate.ErrNoChange {
		logger.Info("mount store schema is up to date")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if err != migrate.ErrNilVersion {
		logger.Info("mount store schema version", "version", version, "dirty", dirty)
		if dirty {
			logger.Warn("mount store schema is in dirty state, manual intervention may be required")
		}
	}

	return nil
}

// RunMigrations applies the mount store migrations against the configured
// database. Exposed for manual migration runs and integration tests.
func RunMigrations(ctx context.Context, cfg *Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return runMigrations(ctx, cfg.ConnectionString())
}
