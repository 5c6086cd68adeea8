package exports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/fuel-planner/internal/userctx"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// Handlers handles HTTP requests for exports
type Handlers struct {
	service      *Service
	defaultOwner string
}

func NewHandlers(service *Service, defaultOwner string) *Handlers {
	if defaultOwner == "" {
		defaultOwner = "default"
	}
	return &Handlers{service: service, defaultOwner: defaultOwner}
}

// HandleCreate handles POST /v1/exports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	var req CreateExportRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON")
		return
	}

	export, err := h.service.CreateExport(r.Context(), owner, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto, err := h.toDTO(r, export)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// HandleList handles GET /v1/exports
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	list, err := h.service.ListExports(r.Context(), owner, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]ExportDTO, 0, len(list))
	for i := range list {
		dto, err := h.toDTO(r, &list[i])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, ExportsResponse{Exports: dtos})
}

// HandleGet handles GET /v1/exports/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	export, err := h.service.GetExport(r.Context(), owner, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	dto, err := h.toDTO(r, export)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// HandleDownload handles GET /v1/exports/{id}/download
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	dl, err := h.service.Download(r.Context(), owner, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if dl.RedirectURL != "" {
		http.Redirect(w, r, dl.RedirectURL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Data)
}

// HandleDelete handles DELETE /v1/exports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	if err := h.service.DeleteExport(r.Context(), owner, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) toDTO(r *http.Request, export *Export) (ExportDTO, error) {
	dto := ExportDTO{
		ID:          export.ID,
		Format:      export.Format,
		WeekStart:   export.WeekStart,
		ContentType: export.ContentType,
		SizeBytes:   export.SizeBytes,
		Status:      export.Status,
		Error:       export.Error,
		CreatedAt:   export.CreatedAt,
	}
	if export.Status != StatusReady {
		return dto, nil
	}
	downloadURL, err := h.service.DownloadURL(r.Context(), export, getBaseURL(r))
	if err != nil {
		return ExportDTO{}, err
	}
	dto.DownloadURL = downloadURL
	return dto, nil
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	errMsg := err.Error()
	switch {
	case strings.HasPrefix(errMsg, "validation failed: "):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(errMsg, "validation failed: "))
	case errors.Is(err, ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "plan_not_found", "No plan saved yet")
	case errors.Is(err, ErrExportNotFound):
		writeError(w, http.StatusNotFound, "export_not_found", "Export not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Export request failed")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid export ID")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
