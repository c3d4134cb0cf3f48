package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator builds a migrator over the embedded migrations for db's dialect.
// The migrator shares db; closing it closes the connection.
func NewMigrator(db SQL) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+string(db.Dialect()))
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	var driver migratedb.Driver
	switch db.Dialect() {
	case DialectPostgres:
		driver, err = postgres.WithInstance(db.Conn(), &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite.WithInstance(db.Conn(), &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", db.Dialect())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(db.Dialect()), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies all pending migrations
func MigrateUp(db SQL) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
