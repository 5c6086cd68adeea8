package exports

import (
	"time"

	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/google/uuid"
)

const (
	FormatPDF        = "pdf"
	FormatCSV        = "csv"
	FormatGroceryCSV = "grocery_csv"
	FormatICS        = "ics"

	StatusReady  = "ready"
	StatusFailed = "failed"
)

// Formats lists every supported export format.
var Formats = []string{FormatPDF, FormatCSV, FormatGroceryCSV, FormatICS}

// CreateExportRequest renders either the posted plan or, when Plan is nil,
// the caller's stored plan.
type CreateExportRequest struct {
	Format           string        `json:"format"`
	Plan             *planner.Plan `json:"plan,omitempty"`
	CompetitionStart string        `json:"competition_start,omitempty"`
}

// Export is the metadata of a rendered file.
type Export struct {
	ID          uuid.UUID
	OwnerUserID string
	Format      string
	WeekStart   string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	Status      string
	Error       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExportDTO is the response representation of an export
type ExportDTO struct {
	ID          uuid.UUID `json:"id"`
	Format      string    `json:"format"`
	WeekStart   string    `json:"week_start"`
	ContentType string    `json:"content_type"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	Error       *string   `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ExportsResponse struct {
	Exports []ExportDTO `json:"exports"`
}

// Download is either the file body or a URL the client should follow.
type Download struct {
	RedirectURL string
	Data        []byte
	ContentType string
	Filename    string
}
