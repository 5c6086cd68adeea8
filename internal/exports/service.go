package exports

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/fdg312/fuel-planner/internal/blob"
	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidFormat  = fmt.Errorf("format must be one of %s", strings.Join(Formats, ", "))
	ErrPlanNotFound   = errors.New("no plan saved yet")
	ErrExportNotFound = errors.New("export not found")
)

const defaultListLimit = 20

// PlanLoader returns the caller's stored plan.
type PlanLoader interface {
	LoadPlan(ctx context.Context, ownerUserID string) (planner.Plan, bool, error)
}

type Logger interface {
	Printf(format string, v ...any)
}

type Options struct {
	PresignTTLSeconds int
	PublicBaseURL     string
	PreferPublicURL   bool
	MaxPerList        int
}

// Service renders plans into files and tracks them per owner.
type Service struct {
	exports   storage.ExportsStorage
	plans     PlanLoader
	blobStore blob.Store
	opts      Options
	logger    Logger
	now       func() time.Time
}

func NewService(exports storage.ExportsStorage, plans PlanLoader, blobStore blob.Store, opts Options, logger Logger) *Service {
	if opts.MaxPerList <= 0 {
		opts.MaxPerList = 50
	}
	if opts.PresignTTLSeconds <= 0 {
		opts.PresignTTLSeconds = 900
	}
	return &Service{
		exports:   exports,
		plans:     plans,
		blobStore: blobStore,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateExport renders the requested format and stores the file.
func (s *Service) CreateExport(ctx context.Context, ownerUserID string, req CreateExportRequest) (*Export, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if !slices.Contains(Formats, format) {
		return nil, fmt.Errorf("validation failed: %w", ErrInvalidFormat)
	}

	var plan planner.Plan
	if req.Plan != nil {
		if err := planner.ValidatePlan(*req.Plan); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		plan = *req.Plan
	} else {
		stored, found, err := s.plans.LoadPlan(ctx, ownerUserID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrPlanNotFound
		}
		plan = stored
	}

	var taper []planner.TaperChecklistEntry
	if start := strings.TrimSpace(req.CompetitionStart); start != "" {
		entries, err := planner.BuildTaper(start)
		if err != nil {
			return nil, fmt.Errorf("validation failed: competition_start: %w", err)
		}
		taper = entries
	}

	data, err := Render(format, plan, taper, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	id := uuid.New()
	meta := &storage.ExportMeta{
		ID:          id,
		OwnerUserID: ownerUserID,
		Format:      format,
		WeekStart:   weekStart(plan),
		ObjectKey:   ObjectKey(ownerUserID, id, format),
		ContentType: ContentType(format),
		SizeBytes:   int64(len(data)),
		Status:      StatusReady,
	}

	if _, err := s.blobStore.PutObject(ctx, meta.ObjectKey, data, meta.ContentType); err != nil {
		msg := err.Error()
		meta.Status = StatusFailed
		meta.Error = &msg
		meta.SizeBytes = 0
		if createErr := s.exports.CreateExport(ctx, meta); createErr != nil {
			logf(s.logger, "WARN exports: failed to record failed export id=%s: %v", id, createErr)
		}
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	if err := s.exports.CreateExport(ctx, meta); err != nil {
		if delErr := s.blobStore.DeleteObject(ctx, meta.ObjectKey); delErr != nil {
			logf(s.logger, "WARN exports: orphaned object key=%s: %v", meta.ObjectKey, delErr)
		}
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}

	logf(s.logger, "INFO exports: created id=%s owner=%s format=%s size=%d", id, ownerUserID, format, meta.SizeBytes)
	return toExport(meta), nil
}

// GetExport returns ErrExportNotFound for ids the owner does not hold.
func (s *Service) GetExport(ctx context.Context, ownerUserID string, id uuid.UUID) (*Export, error) {
	meta, err := s.exports.GetExport(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}
	if meta.OwnerUserID != ownerUserID {
		return nil, ErrExportNotFound
	}
	return toExport(meta), nil
}

func (s *Service) ListExports(ctx context.Context, ownerUserID string, limit, offset int) ([]Export, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > s.opts.MaxPerList {
		limit = s.opts.MaxPerList
	}
	if offset < 0 {
		offset = 0
	}

	metaList, err := s.exports.ListExports(ctx, ownerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	out := make([]Export, len(metaList))
	for i := range metaList {
		out[i] = *toExport(&metaList[i])
	}
	return out, nil
}

func (s *Service) DeleteExport(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	export, err := s.GetExport(ctx, ownerUserID, id)
	if err != nil {
		return err
	}

	if err := s.blobStore.DeleteObject(ctx, export.ObjectKey); err != nil {
		logf(s.logger, "WARN exports: failed to delete object key=%s: %v", export.ObjectKey, err)
	}

	if err := s.exports.DeleteExport(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrExportNotFound
		}
		return fmt.Errorf("failed to delete export metadata: %w", err)
	}
	return nil
}

// DownloadURL is the public URL, a presigned URL, or the API download route
// when the store cannot presign.
func (s *Service) DownloadURL(ctx context.Context, export *Export, baseURL string) (string, error) {
	direct, err := s.directURL(ctx, export)
	if err != nil {
		return "", err
	}
	if direct != "" {
		return direct, nil
	}
	return fmt.Sprintf("%s/v1/exports/%s/download", strings.TrimSuffix(baseURL, "/"), export.ID), nil
}

// Download resolves a redirect when the store can serve the object itself,
// otherwise the file body.
func (s *Service) Download(ctx context.Context, ownerUserID string, id uuid.UUID) (*Download, error) {
	export, err := s.GetExport(ctx, ownerUserID, id)
	if err != nil {
		return nil, err
	}
	if export.Status != StatusReady {
		return nil, ErrExportNotFound
	}

	direct, err := s.directURL(ctx, export)
	if err != nil {
		return nil, err
	}
	if direct != "" {
		return &Download{RedirectURL: direct}, nil
	}

	data, err := s.blobStore.GetObject(ctx, export.ObjectKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return &Download{
		Data:        data,
		ContentType: export.ContentType,
		Filename:    Filename(export.Format, export.WeekStart),
	}, nil
}

func (s *Service) directURL(ctx context.Context, export *Export) (string, error) {
	if s.opts.PreferPublicURL && s.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + export.ObjectKey, nil
	}
	presigned, err := s.blobStore.PresignGet(ctx, export.ObjectKey, s.opts.PresignTTLSeconds)
	if err != nil {
		if errors.Is(err, blob.ErrPresignNotSupport) {
			return "", nil
		}
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presigned, nil
}

// ObjectKey places every export under its owner's prefix.
func ObjectKey(ownerUserID string, id uuid.UUID, format string) string {
	return fmt.Sprintf("exports/%s/%s.%s", url.PathEscape(ownerUserID), id, FileExtension(format))
}

func weekStart(plan planner.Plan) string {
	if len(plan.Days) == 0 {
		return ""
	}
	return plan.Days[0].Date
}

func toExport(meta *storage.ExportMeta) *Export {
	return &Export{
		ID:          meta.ID,
		OwnerUserID: meta.OwnerUserID,
		Format:      meta.Format,
		WeekStart:   meta.WeekStart,
		ObjectKey:   meta.ObjectKey,
		ContentType: meta.ContentType,
		SizeBytes:   meta.SizeBytes,
		Status:      meta.Status,
		Error:       meta.Error,
		CreatedAt:   meta.CreatedAt,
		UpdatedAt:   meta.UpdatedAt,
	}
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
