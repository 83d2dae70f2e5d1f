package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/runcraft/internal/export"
	"github.com/UnknownOlympus/runcraft/internal/planner"
	"github.com/UnknownOlympus/runcraft/internal/stats"
)

// APIError is a structured error response.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`    // Error code: bad_request, busy, empty_route, etc.
	Message string `json:"message"` // Human-readable message
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, r, status, APIError{Status: status, Code: code, Message: message})
}

// writeDomainError maps planner, stats and export errors to HTTP responses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidCoordinates):
		s.writeError(w, r, http.StatusBadRequest, "invalid_coordinates", err.Error())
	case errors.Is(err, stats.ErrUnknownUnit):
		s.writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, planner.ErrBusy):
		s.writeError(w, r, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, planner.ErrNoWaypoints):
		s.writeError(w, r, http.StatusConflict, "no_waypoints", err.Error())
	case errors.Is(err, export.ErrEmptyRoute):
		s.writeError(w, r, http.StatusNotFound, "empty_route", err.Error())
	default:
		s.log.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", slog.String("error", err.Error()))
	}
}
