package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/google/uuid"
)

var _ storage.Storage = (*MemoryStorage)(nil)

func TestPlanDocumentLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, found, err := s.GetPlan(ctx, "default"); err != nil || found {
		t.Fatalf("expected no document, got found=%v err=%v", found, err)
	}

	first, err := s.PutPlan(ctx, "default", []byte(`{"week_start":"sunday"}`))
	if err != nil {
		t.Fatalf("PutPlan error: %v", err)
	}
	second, err := s.PutPlan(ctx, "default", []byte(`{"week_start":"sunday","timezone":"Africa/Cairo"}`))
	if err != nil {
		t.Fatalf("PutPlan error: %v", err)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated_at not bumped: %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed: %v then %v", first.CreatedAt, second.CreatedAt)
	}

	doc, found, err := s.GetPlan(ctx, "default")
	if err != nil || !found {
		t.Fatalf("GetPlan found=%v err=%v", found, err)
	}
	if string(doc.Payload) != `{"week_start":"sunday","timezone":"Africa/Cairo"}` {
		t.Fatalf("unexpected payload %s", doc.Payload)
	}

	doc.Payload[0] = 'X'
	again, _, _ := s.GetPlan(ctx, "default")
	if again.Payload[0] != '{' {
		t.Fatal("stored payload shares memory with caller")
	}

	if _, found, _ := s.GetPlan(ctx, "someone-else"); found {
		t.Fatal("documents leak across owners")
	}
}

func TestPutPlanBumpsUpdatedAtWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	s := New()
	fixed := time.Date(2025, 11, 16, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	a, _ := s.PutPlan(ctx, "default", []byte(`{}`))
	b, _ := s.PutPlan(ctx, "default", []byte(`{}`))
	if !b.UpdatedAt.After(a.UpdatedAt) {
		t.Fatalf("expected strictly increasing updated_at, got %v then %v", a.UpdatedAt, b.UpdatedAt)
	}
}

func TestExportsCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	tick := time.Date(2025, 11, 16, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	var ids []uuid.UUID
	for _, format := range []string{"pdf", "csv", "ics"} {
		meta := &storage.ExportMeta{OwnerUserID: "default", Format: format, Status: "ready"}
		if err := s.CreateExport(ctx, meta); err != nil {
			t.Fatalf("CreateExport error: %v", err)
		}
		if meta.ID == uuid.Nil {
			t.Fatal("expected id to be assigned")
		}
		ids = append(ids, meta.ID)
	}
	if err := s.CreateExport(ctx, &storage.ExportMeta{OwnerUserID: "other", Format: "pdf"}); err != nil {
		t.Fatalf("CreateExport error: %v", err)
	}

	list, err := s.ListExports(ctx, "default", 2, 0)
	if err != nil {
		t.Fatalf("ListExports error: %v", err)
	}
	if len(list) != 2 || list[0].Format != "ics" || list[1].Format != "csv" {
		t.Fatalf("unexpected first page: %+v", list)
	}
	list, _ = s.ListExports(ctx, "default", 2, 2)
	if len(list) != 1 || list[0].Format != "pdf" {
		t.Fatalf("unexpected second page: %+v", list)
	}
	list, _ = s.ListExports(ctx, "default", 2, 10)
	if len(list) != 0 {
		t.Fatalf("expected empty page, got %+v", list)
	}

	got, err := s.GetExport(ctx, ids[0])
	if err != nil || got.Format != "pdf" {
		t.Fatalf("GetExport = %+v, %v", got, err)
	}

	if err := s.DeleteExport(ctx, ids[0]); err != nil {
		t.Fatalf("DeleteExport error: %v", err)
	}
	if _, err := s.GetExport(ctx, ids[0]); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteExport(ctx, ids[0]); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
