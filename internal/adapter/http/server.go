package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Updater runs one pipeline invocation on demand.
type Updater interface {
	ReadinessChecker
	Trigger(ctx context.Context) (domain.Invocation, domain.UpdateResult, error)
}

// ConditionsSource exposes the latest accepted result.
type ConditionsSource interface {
	Snapshot() pipeline.Snapshot
}

// Server exposes health, readiness, metrics, and the conditions API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// GET /api/v1/conditions, and POST /api/v1/refresh routes.
func NewServer(addr string, updater Updater, latest ConditionsSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(updater))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/conditions", handleConditions(latest))
	mux.HandleFunc("POST /api/v1/refresh", s.handleRefresh(updater))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type conditionsResponse struct {
	pipeline.Snapshot
	StatusNote     string   `json:"status_note"`
	DisplayReasons []string `json:"display_reasons,omitempty"`
}

func handleConditions(latest ConditionsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := latest.Snapshot()
		if snap.Result == nil {
			body := map[string]string{"status": "no data yet"}
			if snap.LastFailure != "" {
				body["error"] = snap.LastFailure
			}
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		writeJSON(w, http.StatusOK, conditionsResponse{
			Snapshot:       snap,
			StatusNote:     snap.Result.StatusNote(),
			DisplayReasons: snap.Result.Risk.DisplayReasons(),
		})
	}
}

func (s *Server) handleRefresh(updater Updater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, result, err := updater.Trigger(r.Context())
		if err != nil {
			s.logger.Warn("manual refresh failed", "sequence", inv.Sequence, "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"status":     "failed",
				"error":      err.Error(),
				"invocation": inv,
			})
			return
		}
		writeJSON(w, http.StatusOK, conditionsResponse{
			Snapshot:       pipeline.Snapshot{Invocation: inv, Result: &result},
			StatusNote:     result.StatusNote(),
			DisplayReasons: result.Risk.DisplayReasons(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
