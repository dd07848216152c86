package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tracked_users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		mobile     TEXT NOT NULL,
		latitude   DOUBLE PRECISION,
		longitude  DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS tracked_users_created_at_idx ON tracked_users (created_at DESC)`,
}

// EnsureSchema creates the directory tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
