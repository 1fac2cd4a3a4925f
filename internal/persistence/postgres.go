package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of *pgxpool.Pool the postgres backend needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	selectDocumentSQL = `SELECT body FROM schedule_documents WHERE key = $1`
	upsertDocumentSQL = `INSERT INTO schedule_documents (key, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`
)

// PostgresBackend keeps one row per document in schedule_documents.
type PostgresBackend struct {
	pool PgxPool
}

func NewPostgresBackend(pool PgxPool) *PostgresBackend {
	if pool == nil {
		panic("persistence: pgx pool required")
	}
	return &PostgresBackend{pool: pool}
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := p.pool.QueryRow(ctx, selectDocumentSQL, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres backend: select %s: %w", key, err)
	}
	return body, nil
}

func (p *PostgresBackend) Put(ctx context.Context, key string, body []byte) error {
	if _, err := p.pool.Exec(ctx, upsertDocumentSQL, key, body); err != nil {
		return fmt.Errorf("postgres backend: upsert %s: %w", key, err)
	}
	return nil
}
