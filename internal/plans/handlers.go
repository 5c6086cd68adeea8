package plans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/fdg312/fuel-planner/internal/userctx"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service      *Service
	defaultOwner string
}

func NewHandler(service *Service, defaultOwner string) *Handler {
	if defaultOwner == "" {
		defaultOwner = "default"
	}
	return &Handler{service: service, defaultOwner: defaultOwner}
}

// HandleGenerate handles POST /v1/plans/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Generate(req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to generate plan")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetPlan handles GET /v1/plan
func (h *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	doc, found, err := h.service.GetPlan(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load plan")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "No plan saved yet")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandlePutPlan handles PUT /v1/plan
func (h *Handler) HandlePutPlan(w http.ResponseWriter, r *http.Request) {
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	var req SavePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := h.service.SavePlan(r.Context(), owner, req.Plan)
	if err != nil {
		h.writeServiceError(w, err, "Failed to save plan")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleStoredGrocery handles GET /v1/plan/grocery
func (h *Handler) HandleStoredGrocery(w http.ResponseWriter, r *http.Request) {
	owner := userctx.OwnerOrDefault(r.Context(), h.defaultOwner)

	resp, found, err := h.service.StoredGrocery(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build grocery list")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "No plan saved yet")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePostGrocery handles POST /v1/plan/grocery with a plan in the body.
func (h *Handler) HandlePostGrocery(w http.ResponseWriter, r *http.Request) {
	var req SavePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, Grocery(req.Plan))
}

// HandleTaper handles GET /v1/taper?start=YYYY-MM-DD
func (h *Handler) HandleTaper(w http.ResponseWriter, r *http.Request) {
	start := strings.TrimSpace(r.URL.Query().Get("start"))
	if start == "" {
		start = planner.DefaultCompetitionStart
	}

	resp, err := h.service.Taper(start)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build taper checklist")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHydration handles GET /v1/hydration?weight_kg=&sessions=
func (h *Handler) HandleHydration(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var weight *float64
	if raw := strings.TrimSpace(q.Get("weight_kg")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "weight_kg must be a number")
			return
		}
		weight = &v
	}

	sessions := 0
	if raw := strings.TrimSpace(q.Get("sessions")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "sessions must be an integer")
			return
		}
		sessions = v
	}

	resp, err := h.service.Hydration(weight, sessions)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compute hydration")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMacroPresets handles GET /v1/catalog/macros
func (h *Handler) HandleMacroPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MacroPresets())
}

// HandleGuidance handles GET /v1/catalog/guidance[?age=&servings=]
func (h *Handler) HandleGuidance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawAge, rawServings := strings.TrimSpace(q.Get("age")), strings.TrimSpace(q.Get("servings"))
	if rawAge == "" && rawServings == "" {
		writeJSON(w, http.StatusOK, Guidance())
		return
	}

	age, err := strconv.Atoi(rawAge)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "age must be an integer")
		return
	}
	servings := 0
	if rawServings != "" {
		if servings, err = strconv.Atoi(rawServings); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "servings must be an integer")
			return
		}
	}

	resp, err := CaffeineGuidance(age, servings)
	if err != nil {
		h.writeServiceError(w, err, "Failed to check caffeine")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMealCatalog handles GET /v1/catalog/meals?light=true
func (h *Handler) HandleMealCatalog(w http.ResponseWriter, r *http.Request) {
	light, _ := strconv.ParseBool(r.URL.Query().Get("light"))
	writeJSON(w, http.StatusOK, MealCatalog(light))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	errMsg := err.Error()
	switch {
	case strings.HasPrefix(errMsg, "validation failed: "):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(errMsg, "validation failed: "))
	case errors.Is(err, ErrStoredPlanInvalid):
		writeError(w, http.StatusUnprocessableEntity, "stored_plan_invalid", errMsg)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
