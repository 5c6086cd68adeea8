package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// PlanDocument is the stored week plan of one owner. Payload is the
// JSON-encoded plan; there is one document per owner and the last write wins.
type PlanDocument struct {
	OwnerUserID string
	Payload     []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlansStorage keeps one plan document per owner.
type PlansStorage interface {
	// GetPlan returns the owner's document; found is false when none was saved.
	GetPlan(ctx context.Context, ownerUserID string) (doc PlanDocument, found bool, err error)

	// PutPlan inserts or replaces the owner's document and bumps UpdatedAt.
	PutPlan(ctx context.Context, ownerUserID string, payload []byte) (PlanDocument, error)
}

// ExportMeta describes a rendered export file.
type ExportMeta struct {
	ID          uuid.UUID
	OwnerUserID string
	Format      string // pdf | csv | grocery_csv | ics
	WeekStart   string // first date of the exported plan
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	Status      string // ready | failed
	Error       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ExportsStorage interface {
	CreateExport(ctx context.Context, meta *ExportMeta) error

	// GetExport returns ErrNotFound for unknown ids.
	GetExport(ctx context.Context, id uuid.UUID) (*ExportMeta, error)

	// ListExports returns the owner's exports, newest first.
	ListExports(ctx context.Context, ownerUserID string, limit, offset int) ([]ExportMeta, error)

	DeleteExport(ctx context.Context, id uuid.UUID) error
}

// Storage is implemented by every backend.
type Storage interface {
	PlansStorage
	ExportsStorage

	// Backend names the implementation for logs.
	Backend() string
	Close() error
}
