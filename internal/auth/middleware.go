package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/fdg312/fuel-planner/internal/config"
)

// Middleware resolves the plan owner from a bearer token.
type Middleware struct {
	service  *Service
	required bool
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{service: service, required: cfg.AuthRequired}
}

// Wrap authenticates every non-public request. With AUTH_REQUIRED off a
// missing token passes through and handlers fall back to the default owner;
// a token that is present must still verify.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" && !m.required {
			next.ServeHTTP(w, r)
			return
		}

		owner, err := m.ownerFromHeader(header)
		if err != nil {
			msg := "Unauthorized"
			if header != "" {
				msg = "Invalid or expired token"
			}
			writeError(w, http.StatusUnauthorized, "unauthorized", msg)
			return
		}

		if !m.required {
			log.Printf("DEBUG auth: token accepted sub=%s %s %s", owner, r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), owner)))
	})
}

func (m *Middleware) ownerFromHeader(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrInvalidToken
	}
	return m.service.VerifyJWT(strings.TrimSpace(token))
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// isPublicPath lists routes that never need a token. Catalog data is
// static and identical for every owner.
func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/v1/auth/") || strings.HasPrefix(path, "/v1/catalog/")
}
