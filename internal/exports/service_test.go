package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/fuel-planner/internal/blob"
	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/fdg312/fuel-planner/internal/storage/memory"
	"github.com/fdg312/fuel-planner/internal/userctx"
	"github.com/google/uuid"
)

type mockPlanLoader struct {
	plans map[string]planner.Plan
}

func (m *mockPlanLoader) LoadPlan(ctx context.Context, ownerUserID string) (planner.Plan, bool, error) {
	plan, ok := m.plans[ownerUserID]
	return plan, ok, nil
}

// presigningStore answers PresignGet like an S3 bucket would.
type presigningStore struct {
	*blob.MemoryStore
}

func (p presigningStore) PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error) {
	return "https://bucket.example/" + key + "?X-Amz-Signature=test", nil
}

func setupTestService(t *testing.T, store blob.Store, opts Options) (*Service, *mockPlanLoader, *bytes.Buffer) {
	t.Helper()
	loader := &mockPlanLoader{plans: map[string]planner.Plan{"default": testPlan(t)}}
	var buf bytes.Buffer
	return NewService(memory.New(), loader, store, opts, log.New(&buf, "", 0)), loader, &buf
}

func TestCreateExportFromStoredPlan(t *testing.T) {
	store := blob.NewMemoryStore()
	svc, _, logs := setupTestService(t, store, Options{})

	export, err := svc.CreateExport(context.Background(), "default", CreateExportRequest{Format: "CSV"})
	if err != nil {
		t.Fatalf("CreateExport error: %v", err)
	}
	if export.Format != FormatCSV || export.Status != StatusReady || export.WeekStart != "2025-11-16" {
		t.Fatalf("export = %+v", export)
	}
	wantKey := "exports/default/" + export.ID.String() + ".csv"
	if export.ObjectKey != wantKey {
		t.Fatalf("key = %s, want %s", export.ObjectKey, wantKey)
	}
	if store.Len() != 1 {
		t.Fatalf("stored objects = %d", store.Len())
	}
	if !strings.Contains(logs.String(), "INFO exports: created") {
		t.Fatalf("log = %q", logs.String())
	}
}

func TestCreateExportErrors(t *testing.T) {
	svc, _, _ := setupTestService(t, blob.NewMemoryStore(), Options{})
	ctx := context.Background()

	if _, err := svc.CreateExport(ctx, "default", CreateExportRequest{Format: "docx"}); err == nil || !strings.HasPrefix(err.Error(), "validation failed: ") {
		t.Fatalf("expected format validation error, got %v", err)
	}
	if _, err := svc.CreateExport(ctx, "nobody", CreateExportRequest{Format: FormatPDF}); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
	if _, err := svc.CreateExport(ctx, "default", CreateExportRequest{Format: FormatPDF, CompetitionStart: "19/11"}); err == nil || !strings.Contains(err.Error(), "competition_start") {
		t.Fatalf("expected competition_start error, got %v", err)
	}

	bad := testPlan(t)
	bad.Days = bad.Days[:3]
	if _, err := svc.CreateExport(ctx, "default", CreateExportRequest{Format: FormatCSV, Plan: &bad}); err == nil || !strings.HasPrefix(err.Error(), "validation failed: ") {
		t.Fatalf("expected plan validation error, got %v", err)
	}
}

func TestExportOwnership(t *testing.T) {
	svc, loader, _ := setupTestService(t, blob.NewMemoryStore(), Options{})
	loader.plans["other"] = testPlan(t)
	ctx := context.Background()

	export, err := svc.CreateExport(ctx, "default", CreateExportRequest{Format: FormatICS})
	if err != nil {
		t.Fatalf("CreateExport error: %v", err)
	}

	if _, err := svc.GetExport(ctx, "other", export.ID); !errors.Is(err, ErrExportNotFound) {
		t.Fatalf("expected ErrExportNotFound for other owner, got %v", err)
	}
	if err := svc.DeleteExport(ctx, "other", export.ID); !errors.Is(err, ErrExportNotFound) {
		t.Fatalf("expected ErrExportNotFound on foreign delete, got %v", err)
	}
	list, err := svc.ListExports(ctx, "other", 0, 0)
	if err != nil || len(list) != 0 {
		t.Fatalf("other owner list = %v, err = %v", list, err)
	}
}

func TestListAndDeleteExports(t *testing.T) {
	store := blob.NewMemoryStore()
	svc, _, _ := setupTestService(t, store, Options{MaxPerList: 2})
	ctx := context.Background()

	for _, f := range Formats {
		if _, err := svc.CreateExport(ctx, "default", CreateExportRequest{Format: f}); err != nil {
			t.Fatalf("CreateExport(%s) error: %v", f, err)
		}
	}

	list, err := svc.ListExports(ctx, "default", 10, 0)
	if err != nil {
		t.Fatalf("ListExports error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list len = %d, want capped at 2", len(list))
	}

	if err := svc.DeleteExport(ctx, "default", list[0].ID); err != nil {
		t.Fatalf("DeleteExport error: %v", err)
	}
	if store.Len() != len(Formats)-1 {
		t.Fatalf("objects after delete = %d", store.Len())
	}
	if _, err := svc.GetExport(ctx, "default", list[0].ID); !errors.Is(err, ErrExportNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDownloadServesBytesWithoutPresign(t *testing.T) {
	svc, _, _ := setupTestService(t, blob.NewMemoryStore(), Options{})
	ctx := context.Background()

	export, _ := svc.CreateExport(ctx, "default", CreateExportRequest{Format: FormatGroceryCSV})
	dl, err := svc.Download(ctx, "default", export.ID)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if dl.RedirectURL != "" || len(dl.Data) == 0 {
		t.Fatalf("download = %+v", dl)
	}
	if dl.Filename != "grocery-list-2025-11-16.csv" || dl.ContentType != "text/csv" {
		t.Fatalf("filename/content type = %s/%s", dl.Filename, dl.ContentType)
	}

	url, err := svc.DownloadURL(ctx, export, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("DownloadURL error: %v", err)
	}
	if url != "http://localhost:8080/v1/exports/"+export.ID.String()+"/download" {
		t.Fatalf("url = %s", url)
	}
}

func TestDownloadRedirects(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := setupTestService(t, presigningStore{blob.NewMemoryStore()}, Options{})
	export, _ := svc.CreateExport(ctx, "default", CreateExportRequest{Format: FormatPDF})
	dl, err := svc.Download(ctx, "default", export.ID)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if !strings.HasPrefix(dl.RedirectURL, "https://bucket.example/exports/default/") {
		t.Fatalf("redirect = %s", dl.RedirectURL)
	}

	svc, _, _ = setupTestService(t, presigningStore{blob.NewMemoryStore()}, Options{PreferPublicURL: true, PublicBaseURL: "https://cdn.example/"})
	export, _ = svc.CreateExport(ctx, "default", CreateExportRequest{Format: FormatPDF})
	dl, _ = svc.Download(ctx, "default", export.ID)
	if dl.RedirectURL != "https://cdn.example/"+export.ObjectKey {
		t.Fatalf("public redirect = %s", dl.RedirectURL)
	}
}

func TestHandlersCreateListDownloadDelete(t *testing.T) {
	svc, loader, _ := setupTestService(t, blob.NewMemoryStore(), Options{})
	loader.plans["athlete-1"] = testPlan(t)
	h := NewHandlers(svc, "default")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/exports", h.HandleCreate)
	mux.HandleFunc("GET /v1/exports", h.HandleList)
	mux.HandleFunc("GET /v1/exports/{id}", h.HandleGet)
	mux.HandleFunc("GET /v1/exports/{id}/download", h.HandleDownload)
	mux.HandleFunc("DELETE /v1/exports/{id}", h.HandleDelete)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(userctx.WithUserID(req.Context(), "athlete-1"))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/v1/exports", `{"format":"csv"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created ExportDTO
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasSuffix(created.DownloadURL, "/v1/exports/"+created.ID.String()+"/download") {
		t.Fatalf("download url = %s", created.DownloadURL)
	}

	rec = do(http.MethodGet, "/v1/exports", "")
	var list ExportsResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Exports) != 1 || list.Exports[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}

	rec = do(http.MethodGet, "/v1/exports/"+created.ID.String()+"/download", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("content type = %s", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "fuel-plan-2025-11-16.csv") {
		t.Fatalf("disposition = %s", rec.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(rec.Body.String(), "date,meal,items") {
		t.Fatalf("body = %q", rec.Body.String()[:20])
	}

	rec = do(http.MethodDelete, "/v1/exports/"+created.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(http.MethodGet, "/v1/exports/"+created.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestHandlersErrors(t *testing.T) {
	svc, _, _ := setupTestService(t, blob.NewMemoryStore(), Options{})
	h := NewHandlers(svc, "default")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/exports", h.HandleCreate)
	mux.HandleFunc("GET /v1/exports/{id}/download", h.HandleDownload)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"bad json", http.MethodPost, "/v1/exports", "{", http.StatusBadRequest},
		{"bad format", http.MethodPost, "/v1/exports", `{"format":"xml"}`, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/v1/exports/not-a-uuid/download", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/v1/exports/" + uuid.NewString() + "/download", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}
