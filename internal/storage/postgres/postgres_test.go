package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/fdg312/fuel-planner/internal/dbmigrate"
	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/google/uuid"
)

var _ storage.Storage = (*PostgresStorage)(nil)

// openTestStorage connects to TEST_DATABASE_URL and applies migrations.
func openTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	if err := dbmigrate.Run(ctx, "up", dbURL); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPlanDocumentUpsert(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	owner := "test-" + uuid.NewString()

	if _, found, err := s.GetPlan(ctx, owner); err != nil || found {
		t.Fatalf("expected no document, got found=%v err=%v", found, err)
	}

	first, err := s.PutPlan(ctx, owner, []byte(`{"week_start": "sunday"}`))
	if err != nil {
		t.Fatalf("PutPlan: %v", err)
	}
	second, err := s.PutPlan(ctx, owner, []byte(`{"week_start": "sunday", "timezone": "Africa/Cairo"}`))
	if err != nil {
		t.Fatalf("PutPlan: %v", err)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Fatalf("updated_at went backwards")
	}

	doc, found, err := s.GetPlan(ctx, owner)
	if err != nil || !found {
		t.Fatalf("GetPlan found=%v err=%v", found, err)
	}
	if len(doc.Payload) == 0 {
		t.Fatal("empty payload")
	}
}

func TestExportsRoundTrip(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	owner := "test-" + uuid.NewString()

	meta := &storage.ExportMeta{
		OwnerUserID: owner,
		Format:      "csv",
		WeekStart:   "2025-11-16",
		ObjectKey:   "exports/" + owner + "/a.csv",
		ContentType: "text/csv",
		SizeBytes:   42,
		Status:      "ready",
	}
	if err := s.CreateExport(ctx, meta); err != nil {
		t.Fatalf("CreateExport: %v", err)
	}

	list, err := s.ListExports(ctx, owner, 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListExports = %+v, %v", list, err)
	}
	if err := s.DeleteExport(ctx, meta.ID); err != nil {
		t.Fatalf("DeleteExport: %v", err)
	}
	if _, err := s.GetExport(ctx, meta.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
