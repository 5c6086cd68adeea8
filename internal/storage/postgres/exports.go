package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const exportColumns = `id, owner_user_id, format, week_start, object_key, content_type, size_bytes, status, error, created_at, updated_at`

func (p *PostgresStorage) CreateExport(ctx context.Context, meta *storage.ExportMeta) error {
	query := `
		INSERT INTO exports (id, owner_user_id, format, week_start, object_key, content_type, size_bytes, status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}

	err := p.pool.QueryRow(ctx, query,
		meta.ID,
		meta.OwnerUserID,
		meta.Format,
		meta.WeekStart,
		meta.ObjectKey,
		meta.ContentType,
		meta.SizeBytes,
		meta.Status,
		meta.Error,
	).Scan(&meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}

	return nil
}

func (p *PostgresStorage) GetExport(ctx context.Context, id uuid.UUID) (*storage.ExportMeta, error) {
	query := `SELECT ` + exportColumns + ` FROM exports WHERE id = $1`

	meta, err := scanExport(p.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}

	return &meta, nil
}

func (p *PostgresStorage) ListExports(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.ExportMeta, error) {
	query := `SELECT ` + exportColumns + `
		FROM exports
		WHERE owner_user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := p.pool.Query(ctx, query, ownerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	out := []storage.ExportMeta{}
	for rows.Next() {
		meta, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exports: %w", err)
	}

	return out, nil
}

func (p *PostgresStorage) DeleteExport(ctx context.Context, id uuid.UUID) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM exports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanExport(row pgx.Row) (storage.ExportMeta, error) {
	var m storage.ExportMeta
	err := row.Scan(
		&m.ID,
		&m.OwnerUserID,
		&m.Format,
		&m.WeekStart,
		&m.ObjectKey,
		&m.ContentType,
		&m.SizeBytes,
		&m.Status,
		&m.Error,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}
