package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/jackc/pgx/v5"
)

func (p *PostgresStorage) GetPlan(ctx context.Context, ownerUserID string) (storage.PlanDocument, bool, error) {
	query := `
		SELECT owner_user_id, payload, created_at, updated_at
		FROM plan_documents
		WHERE owner_user_id = $1
	`

	var doc storage.PlanDocument
	err := p.pool.QueryRow(ctx, query, ownerUserID).Scan(
		&doc.OwnerUserID,
		&doc.Payload,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.PlanDocument{}, false, nil
	}
	if err != nil {
		return storage.PlanDocument{}, false, fmt.Errorf("failed to get plan document: %w", err)
	}

	return doc, true, nil
}

func (p *PostgresStorage) PutPlan(ctx context.Context, ownerUserID string, payload []byte) (storage.PlanDocument, error) {
	query := `
		INSERT INTO plan_documents (owner_user_id, payload, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (owner_user_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()
		RETURNING owner_user_id, payload, created_at, updated_at
	`

	var doc storage.PlanDocument
	err := p.pool.QueryRow(ctx, query, ownerUserID, payload).Scan(
		&doc.OwnerUserID,
		&doc.Payload,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return storage.PlanDocument{}, fmt.Errorf("failed to upsert plan document: %w", err)
	}

	return doc, nil
}
