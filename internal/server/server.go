// Package server exposes collected memory reports over HTTP. It is a thin
// consumer of the tracker's output, not part of the tracking core.
package server

import (
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/memstage/internal/report"
)

// Server serves the most recently published report.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	startTime time.Time

	mu     sync.RWMutex
	latest *report.Report
}

// New creates a Server with all routes registered.
func New(logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		startTime: time.Now(),
	}
	s.routes()
	return s
}

// Publish replaces the report returned by the report endpoint.
func (s *Server) Publish(r *report.Report) {
	s.mu.Lock()
	s.latest = r
	s.mu.Unlock()
	s.logger.Info("report published", "run_id", r.RunID, "metrics", len(r.Metrics))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/v1/report", s.handleReport)
}

type healthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	HasReport bool   `json:"has_report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	hasReport := s.latest != nil
	s.mu.RUnlock()

	respondOK(w, healthResponse{
		Status:    "healthy",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		HasReport: hasReport,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		respondError(w, http.StatusNotFound, "no report collected yet")
		return
	}
	respondOK(w, latest)
}
