package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/meetreminder/meetreminder/internal/config"
)

// Dialect names the SQL flavour of a connection
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQL is the connection surface the repositories depend on.
// Queries are written with ? placeholders and passed through Rebind.
type SQL interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context) (*sql.Tx, error)
	HealthCheck(ctx context.Context) error
	Dialect() Dialect
	Conn() *sql.DB
	Close() error
}

var (
	_ SQL = (*Postgres)(nil)
	_ SQL = (*SQLite)(nil)
)

// Open connects to the store selected by cfg.Driver
func Open(cfg config.DatabaseConfig) (SQL, error) {
	switch Dialect(strings.ToLower(cfg.Driver)) {
	case DialectPostgres, "":
		return NewPostgres(cfg)
	case DialectSQLite:
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
