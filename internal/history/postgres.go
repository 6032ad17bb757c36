package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/csv2cypher/internal/config"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS conversion_history (
    id          UUID PRIMARY KEY,
    kind        TEXT        NOT NULL,
    source      TEXT        NOT NULL,
    encoding    TEXT        NOT NULL DEFAULT '',
    records     INTEGER     NOT NULL DEFAULT 0,
    status      TEXT        NOT NULL,
    error       TEXT        NOT NULL DEFAULT '',
    duration_ms BIGINT      NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS conversion_history_created_at_idx
    ON conversion_history (created_at DESC);
`

const insertSQL = `
INSERT INTO conversion_history
    (id, kind, source, encoding, records, status, error, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const recentSQL = `
SELECT id, kind, source, encoding, records, status, error, duration_ms, created_at
FROM conversion_history
ORDER BY created_at DESC
LIMIT $1`

// PgStore is a Store backed by PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// Open connects to the configured database, verifies the connection and
// creates the history table if it does not exist.
func Open(ctx context.Context, cfg config.HistoryConfig) (*PgStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store, err := NewPgStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPgStore wraps an existing pool and ensures the schema exists.
func NewPgStore(ctx context.Context, pool *pgxpool.Pool) (*PgStore, error) {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("create history table: %w", err)
	}
	return &PgStore{pool: pool}, nil
}

// Record inserts one entry.
func (s *PgStore) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, insertSQL,
		pgtype.UUID{Bytes: e.ID, Valid: true},
		e.Kind,
		e.Source,
		e.Encoding,
		int32(e.Records),
		string(e.Status),
		e.Error,
		e.Duration.Milliseconds(),
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *PgStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, recentSQL, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			id         pgtype.UUID
			e          Entry
			records    int32
			status     string
			durationMS int64
			createdAt  pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &e.Kind, &e.Source, &e.Encoding, &records,
			&status, &e.Error, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.ID = uuid.UUID(id.Bytes)
		e.Records = int(records)
		e.Status = Status(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt = createdAt.Time
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *PgStore) Close() {
	s.pool.Close()
}
