package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func migrator(db *sql.DB, migrationsPath string) (*migrate.Migrate, error) {
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("migrations path: %w", err)
	}
	// the driver must not be closed: closing it closes db
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", abs), "sqlite3", driver)
}

// RunMigrations applies every up migration found at migrationsPath.
func RunMigrations(db *sql.DB, migrationsPath string) error {
	m, err := migrator(db, migrationsPath)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version; dirty is set when the last
// migration failed halfway.
func SchemaVersion(db *sql.DB, migrationsPath string) (version uint, dirty bool, err error) {
	m, err := migrator(db, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
