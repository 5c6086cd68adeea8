package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage implements storage.Storage on a pgx pool. The schema
// lives in migrations/.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

func (p *PostgresStorage) Backend() string { return "postgres" }

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
