package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/NotSilaev/MrStone/internal/database"
)

// RunMigrations applies all pending migrations for the users and auth_tokens tables.
// The migration directory is picked from driver (postgres or mysql). Having nothing
// to apply is not an error.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	m, err := migrate.New(migrationsPath(driver), migrateURL(driver, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

func migrationsPath(driver string) string {
	if driver == database.DriverMySQL {
		return "file://migrations/mysql"
	}
	return "file://migrations/postgresql"
}

// migrateURL turns a go-sql-driver/mysql DSN into the mysql:// URL golang-migrate expects.
// Postgres connection strings are already URLs.
func migrateURL(driver, connectionString string) string {
	if driver == database.DriverMySQL {
		return "mysql://" + connectionString
	}
	return connectionString
}
