package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationsDir returns the directory holding the migrations of driver below root.
func MigrationsDir(root, driver string) string {
	if driver == DriverMySQL {
		return filepath.Join(root, "mysql")
	}
	return filepath.Join(root, "postgresql")
}

// Migrate applies every pending migration in dir. db is not closed. MySQL connections
// must be opened with multiStatements=true.
func Migrate(db *sql.DB, driver, dir string) error {
	var (
		instance migratedb.Driver
		err      error
	)
	switch driver {
	case DriverPostgres:
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverMySQL:
		instance, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		return fmt.Errorf("migrations are not supported for driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migration driver: %w", driver, err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve migrations directory: %w", err)
	}

	// The migrate instance is not closed: closing it would close db, which the caller owns.
	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(absDir), driver, instance)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations from %s: %w", dir, err)
	}
	return nil
}
