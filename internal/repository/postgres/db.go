package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/andresuchdata/stocksense/backend-go/internal/config"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates the shared lib/pq connection pool. MaxConns bounds both the
// pool and the number of concurrent operations admitted by Acquire.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		dbInstance, err = Open("postgres", cfg.DSN(), cfg.MaxConns)
	})

	return dbInstance, err
}

// Open connects with any registered database/sql driver for Postgres
// ("postgres" for lib/pq, "pgx" for pgx/v5/stdlib).
func Open(driver, dsn string, maxConns int) (*DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Debug().Str("driver", driver).Int("max_conns", maxConns).Msg("database pool opened")

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(int64(maxConns)),
	}, nil
}

// Acquire blocks until an operation slot is free. Callers must call the
// returned release func.
func (db *DB) Acquire(ctx context.Context) (func(), error) {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire semaphore: %w", err)
	}
	return func() { db.sem.Release(1) }, nil
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	release, err := db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Schema creates the analysis run history table.
const Schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	stock_items      INTEGER NOT NULL DEFAULT 0,
	sales_records    INTEGER NOT NULL DEFAULT 0,
	at_risk          INTEGER NOT NULL DEFAULT 0,
	excess           INTEGER NOT NULL DEFAULT 0,
	alert_count      INTEGER NOT NULL DEFAULT 0,
	critical_cutoff  DOUBLE PRECISION NOT NULL DEFAULT 0,
	attention_cutoff DOUBLE PRECISION NOT NULL DEFAULT 0,
	excess_cutoff    DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs (created_at DESC);
`

// Migrate applies Schema. It works with any database/sql driver for Postgres.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
