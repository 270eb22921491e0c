// Package core owns the database connection for the Core layer.
package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema for the persisted client credentials. Applied at connect time; the
// statement is idempotent so repeated startups are safe.
const credentialsSchema = `
CREATE TABLE IF NOT EXISTS client_credentials (
	sid          TEXT PRIMARY KEY,
	access_token TEXT NOT NULL,
	identity     JSONB,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Connect opens a pgx connection pool against databaseURL, verifies it with
// a ping, and ensures the credentials schema exists.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, credentialsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return pool, nil
}
