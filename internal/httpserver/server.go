package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/fuel-planner/internal/auth"
	"github.com/fdg312/fuel-planner/internal/blob"
	"github.com/fdg312/fuel-planner/internal/config"
	"github.com/fdg312/fuel-planner/internal/exports"
	"github.com/fdg312/fuel-planner/internal/plans"
	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/fdg312/fuel-planner/internal/storage/memory"
	"github.com/fdg312/fuel-planner/internal/storage/mongodb"
	"github.com/fdg312/fuel-planner/internal/storage/postgres"
)

const connectTimeout = 10 * time.Second

// Server is the planner HTTP API.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	blobStore      blob.Store
	authMiddleware *auth.Middleware
	httpServer     *http.Server
}

// New resolves storage and blob backends from cfg and registers routes.
func New(cfg *config.Config) *Server {
	st := initStorage(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	store, mode, err := blob.NewBlobStore(ctx, cfg.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize exports store: %v", err)
	}
	log.Printf("INFO blob: exports blob mode: %s", mode)

	return NewWithDeps(cfg, st, store)
}

// NewWithDeps builds a server on already constructed backends.
func NewWithDeps(cfg *config.Config, st storage.Storage, store blob.Store) *Server {
	s := &Server{
		config:    cfg,
		mux:       http.NewServeMux(),
		storage:   st,
		blobStore: store,
	}
	s.routes()
	return s
}

// initStorage picks Postgres, MongoDB or memory. A backend that cannot be
// reached falls back to memory.
func initStorage(cfg *config.Config) storage.Storage {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.StorageBackend() {
	case "postgres":
		log.Println("INFO storage: connecting to PostgreSQL")
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("WARN storage: postgres unavailable: %v", err)
			log.Println("INFO storage: fallback=memory")
			return memory.New()
		}
		log.Println("INFO storage: backend=postgres")
		return pg
	case "mongo":
		log.Printf("INFO storage: connecting to MongoDB database=%s", cfg.MongoDatabase)
		mg, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Printf("WARN storage: mongo unavailable: %v", err)
			log.Println("INFO storage: fallback=memory")
			return memory.New()
		}
		log.Println("INFO storage: backend=mongo")
		return mg
	default:
		log.Println("INFO storage: backend=memory")
		return memory.New()
	}
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (public)
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	// Plans API
	plansService := plans.NewService(s.storage, s.config.PlanDefaultWeightKg, log.Default())
	plansHandler := plans.NewHandler(plansService, s.config.PlanDefaultOwner)

	s.mux.HandleFunc("POST /v1/plans/generate", plansHandler.HandleGenerate)
	s.mux.HandleFunc("GET /v1/plan", plansHandler.HandleGetPlan)
	s.mux.HandleFunc("PUT /v1/plan", plansHandler.HandlePutPlan)
	s.mux.HandleFunc("GET /v1/plan/grocery", plansHandler.HandleStoredGrocery)
	s.mux.HandleFunc("POST /v1/plan/grocery", plansHandler.HandlePostGrocery)
	s.mux.HandleFunc("GET /v1/taper", plansHandler.HandleTaper)
	s.mux.HandleFunc("GET /v1/hydration", plansHandler.HandleHydration)

	// Catalog (public)
	s.mux.HandleFunc("GET /v1/catalog/macros", plansHandler.HandleMacroPresets)
	s.mux.HandleFunc("GET /v1/catalog/guidance", plansHandler.HandleGuidance)
	s.mux.HandleFunc("GET /v1/catalog/meals", plansHandler.HandleMealCatalog)

	// Exports API
	exportsService := exports.NewService(s.storage, plansService, s.blobStore, exports.Options{
		PresignTTLSeconds: s.config.Blob.S3.PresignTTLSeconds,
		PublicBaseURL:     s.config.Blob.S3.PublicBaseURL,
		PreferPublicURL:   s.config.Blob.S3.PreferPublicURL,
		MaxPerList:        s.config.ExportsMaxPerList,
	}, log.Default())
	exportsHandler := exports.NewHandlers(exportsService, s.config.PlanDefaultOwner)

	s.mux.HandleFunc("POST /v1/exports", exportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/exports", exportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/exports/{id}", exportsHandler.HandleGet)
	s.mux.HandleFunc("GET /v1/exports/{id}/download", exportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/exports/{id}", exportsHandler.HandleDelete)
}

// handleHealthz reports liveness and the active storage backend.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"storage": s.storage.Backend(),
	})
}

// Handler builds the middleware chain (outermost first): CORS, rate limit,
// auth, router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.authMiddleware != nil && s.config.AuthMode != config.AuthModeNone {
		handler = s.authMiddleware.Wrap(handler)
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("INFO http: listening on http://localhost%s", addr)
	log.Printf("INFO http: health check http://localhost%s/healthz", addr)

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close releases the storage backend.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
