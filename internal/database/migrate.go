package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/app/*.sql migrations/cache/*.sql
var migrationsFS embed.FS

// migrationSets maps database names to their embedded migration directory
var migrationSets = map[string]string{
	"app":   "migrations/app",
	"cache": "migrations/cache",
}

// Migrate applies all pending migrations for this database.
// Databases without a migration set are left untouched.
func (db *DB) Migrate() error {
	if _, ok := migrationSets[db.name]; !ok {
		return nil
	}

	m, err := db.newMigrator()
	if err != nil {
		return err
	}

	// m.Close would also close the shared connection
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations for %s: %w", db.name, err)
	}

	return nil
}

// SchemaVersion reports the applied migration version and whether it is dirty
func (db *DB) SchemaVersion() (uint, bool, error) {
	m, err := db.newMigrator()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (db *DB) newMigrator() (*migrate.Migrate, error) {
	dir, ok := migrationSets[db.name]
	if !ok {
		return nil, fmt.Errorf("no migrations for database %s", db.name)
	}

	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("create migration source for %s: %w", db.name, err)
	}

	driver, err := sqlite.WithInstance(db.conn, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration driver for %s: %w", db.name, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator for %s: %w", db.name, err)
	}

	return m, nil
}
