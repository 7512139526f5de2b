// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"formqa/internal/common/config"

	_ "github.com/lib/pq"
)

// Schema creates the tables used to persist finished runs.
const Schema = `
CREATE TABLE IF NOT EXISTS generation_runs (
	id              UUID PRIMARY KEY,
	form_url        TEXT NOT NULL,
	sink_url        TEXT NOT NULL,
	speed           TEXT NOT NULL,
	requested       INTEGER NOT NULL,
	produced        INTEGER NOT NULL,
	submitted       INTEGER NOT NULL,
	failed          INTEGER NOT NULL,
	sink_delivered  INTEGER NOT NULL,
	sink_failed     INTEGER NOT NULL,
	status          TEXT NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS generated_records (
	run_id     UUID NOT NULL REFERENCES generation_runs(id) ON DELETE CASCADE,
	record_id  TEXT NOT NULL,
	payload    JSONB NOT NULL,
	PRIMARY KEY (run_id, record_id)
);`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a PostgreSQL handle. The pool connects lazily.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// WrapDB adapts an existing handle, for example one from sqlmock.
func WrapDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Migrate creates the run tables if they do not exist.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling back otherwise.
func (c *PostgresClient) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
