// Package database provides PostgreSQL connectivity and repositories
// for ads and comments.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections.
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime.
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations.
	DefaultPingTimeout = 5 * time.Second
)

// Config holds database configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c Config) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// OpenPostgres opens a database handle without requiring the database
// to be reachable. The returned bool reports whether an initial ping
// succeeded; an unreachable database is not an error, the caller is
// expected to fall back until it comes back.
func OpenPostgres(cfg Config) (*sqlx.DB, bool, error) {
	db, err := sqlx.Open("postgres", cfg.dsn())
	if err != nil {
		return nil, false, fmt.Errorf("failed to open database handle: %w", err)
	}

	applyPoolSettings(db)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	reachable := db.PingContext(ctx) == nil

	return db, reachable, nil
}

func applyPoolSettings(db *sqlx.DB) {
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)
}
