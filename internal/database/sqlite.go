package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite wraps a single-file SQLite database
type SQLite struct {
	*sql.DB
}

// NewSQLite opens the SQLite database at path
func NewSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	return &SQLite{DB: db}, nil
}

// Dialect reports the SQL flavour of the connection
func (s *SQLite) Dialect() Dialect {
	return DialectSQLite
}

// Conn returns the underlying *sql.DB
func (s *SQLite) Conn() *sql.DB {
	return s.DB
}

// HealthCheck verifies the database file is reachable
func (s *SQLite) HealthCheck(ctx context.Context) error {
	return s.PingContext(ctx)
}

// BeginTx starts a new transaction
func (s *SQLite) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.DB.BeginTx(ctx, nil)
}
