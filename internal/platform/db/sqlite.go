package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	// sqlite3 driver registration.
	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database through sqlx and verifies the connection. The
// pool is pinned to one connection since SQLite serialises writers anyway.
func New(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: open: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}

	return conn, nil
}

// FileDSN builds a DSN for a database file with WAL journaling and a busy timeout.
func FileDSN(path string) string {
	return "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000"
}
