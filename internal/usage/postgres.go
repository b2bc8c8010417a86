package usage

import (
	"context"
	"fmt"
	"time"

	"lettercraft/internal/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS ai_usage (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	service_type TEXT NOT NULL,
	tokens_used INTEGER NOT NULL,
	cost DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ai_usage_user_created_idx ON ai_usage (user_id, created_at)`

const insertSQL = `INSERT INTO ai_usage (id, user_id, service_type, tokens_used, cost, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// execer is the subset of pgxpool.Pool the tracker writes through
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresTracker stores usage records in the ai_usage table
type PostgresTracker struct {
	db   execer
	pool *pgxpool.Pool
	now  func() time.Time
}

// Connect opens a pool to databaseURL and verifies it
func Connect(ctx context.Context, databaseURL string) (*PostgresTracker, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresTracker{db: pool, pool: pool, now: time.Now}, nil
}

// Close closes the connection pool
func (t *PostgresTracker) Close() {
	if t.pool != nil {
		t.pool.Close()
	}
}

// EnsureSchema creates the ai_usage table when missing
func (t *PostgresTracker) EnsureSchema(ctx context.Context) error {
	if _, err := t.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create ai_usage schema: %w", err)
	}
	return nil
}

// Record implements Tracker
func (t *PostgresTracker) Record(ctx context.Context, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = t.now()
	}

	_, err := t.db.Exec(ctx, insertSQL,
		uuid.New(), rec.UserID, string(rec.Kind), rec.Units, rec.Cost(), createdAt)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeUsageRecord, "failed to record AI usage", err).
			WithContext("user_id", rec.UserID).
			WithContext("service_type", string(rec.Kind))
	}
	return nil
}

// NewTracker builds the tracker for databaseURL: logging only when empty,
// otherwise Postgres plus logging. The returned close func is never nil.
func NewTracker(ctx context.Context, databaseURL string, ensureSchema bool, logger *errors.Logger) (Tracker, func(), error) {
	logTracker := NewLogTracker(logger)
	if databaseURL == "" {
		return logTracker, func() {}, nil
	}

	pg, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	if ensureSchema {
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
	}

	return MultiTracker{pg, logTracker}, pg.Close, nil
}
