// Package server exposes the route planner over HTTP together with health and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/internal/planner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency (database, cache) is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	log      *slog.Logger
	planner  *planner.Planner
	location models.Coordinates
	gatherer prometheus.Gatherer
	checks   []HealthCheck
	now      func() time.Time
}

// New creates a Server. location is the map centre returned by /v1/location.
func New(
	log *slog.Logger,
	plan *planner.Planner,
	location models.Coordinates,
	gatherer prometheus.Gatherer,
	checks ...HealthCheck,
) *Server {
	return &Server{
		log:      log,
		planner:  plan,
		location: location,
		gatherer: gatherer,
		checks:   checks,
		now:      time.Now,
	}
}

// Handler returns the routed handler wrapped in access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/route", s.handleGetRoute)
	mux.HandleFunc("POST /v1/route/waypoints", s.handleAddWaypoint)
	mux.HandleFunc("PUT /v1/route/waypoints", s.handleReplaceWaypoints)
	mux.HandleFunc("DELETE /v1/route/waypoints/last", s.handleUndo)
	mux.HandleFunc("DELETE /v1/route", s.handleClear)
	mux.HandleFunc("PUT /v1/route/snap", s.handleSetSnap)
	mux.HandleFunc("GET /v1/route/export.gpx", s.handleExportGPX)
	mux.HandleFunc("GET /v1/route/export.kml", s.handleExportKML)
	mux.HandleFunc("GET /v1/location", s.handleLocation)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return s.accessLog(mux)
}

// Run serves on port until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	readTimeout := 5
	// Writes wait for a full rebuild of the route, which may take many provider round trips.
	writeTimeout := 120
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownTimeout := 10 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}

// handleHealth pings every configured dependency.
func (s *Server) handleHealth(writer http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	for _, hc := range s.checks {
		if err := hc.Check(ctx); err != nil {
			s.log.WarnContext(ctx, "Health check failed", "check", hc.Name, "error", err)
			status, body = http.StatusServiceUnavailable, hc.Name+" ping failed"
			break
		}
	}

	writer.WriteHeader(status)
	if _, err := writer.Write([]byte(body)); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}

	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// accessLog logs every request with its status and latency. 4xx log at warn, 5xx at error.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := slog.LevelDebug
		switch {
		case rec.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case rec.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		s.log.LogAttrs(r.Context(), level, r.Method+" "+r.URL.Path,
			slog.Int("status", rec.status),
			slog.String("latency", time.Since(start).String()),
			slog.Int("bytes_out", rec.bytes),
		)
	})
}
