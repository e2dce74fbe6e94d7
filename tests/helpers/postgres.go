// Package helpers provides shared test infrastructure.
package helpers

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "postgres"
	postgresPassword = "postgres"
	postgresDatabase = "adboard_test"
	startupTimeout   = 60 * time.Second
)

// schema creates the tables the repositories expect.
const schema = `
CREATE TABLE IF NOT EXISTS ads (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	image       TEXT,
	views       BIGINT NOT NULL DEFAULT 0,
	approximate BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS comments (
	id         TEXT PRIMARY KEY,
	ad_id      TEXT NOT NULL REFERENCES ads(id) ON DELETE CASCADE,
	author     TEXT NOT NULL,
	text       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ads_views ON ads (views DESC, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_comments_ad ON comments (ad_id, created_at);
`

// PostgresContainer wraps a disposable Postgres instance with an open
// sqlx connection.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DB        *sqlx.DB
}

// StartPostgres launches a Postgres container and applies the schema.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase(postgresDatabase),
		tcpostgres.WithUsername(postgresUser),
		tcpostgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &PostgresContainer{Container: container, DB: db}, nil
}

// Stop closes the connection and terminates the container.
func (p *PostgresContainer) Stop(ctx context.Context) error {
	_ = p.DB.Close()
	return p.Container.Terminate(ctx)
}
