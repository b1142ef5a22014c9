// Package web provides the HTTP server for triggering marketplace order
// imports. The surface is deliberately small: one upload endpoint and a
// health check. File rendering and result views belong to whatever
// frontend calls this API.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hfauzan/marketimport/internal/config"
	"github.com/hfauzan/marketimport/internal/importer"
	"github.com/hfauzan/marketimport/internal/store"
)

// Server is the HTTP server for the import service.
type Server struct {
	service *importer.Service
	store   store.Store
	cfg     config.ServerConfig
	imp     config.ImportConfig
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server wired to the import service and record store.
func NewServer(service *importer.Service, st store.Store, cfg config.ServerConfig, imp config.ImportConfig) *Server {
	s := &Server{
		service: service,
		store:   st,
		cfg:     cfg,
		imp:     imp,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/api/import", s.handleImport)
}

// Start begins listening on the configured address. Blocks until the
// server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
