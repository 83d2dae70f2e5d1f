package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/runcraft/internal/export"
	"github.com/UnknownOlympus/runcraft/internal/geo"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/internal/planner"
	"github.com/UnknownOlympus/runcraft/internal/stats"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type segmentResponse struct {
	Path      []models.Coordinates `json:"path"`
	Polyline  string               `json:"polyline"`
	Distance  float64              `json:"distance_km"`
	Elevation float64              `json:"elevation_m"`
}

type routeResponse struct {
	Waypoints []models.Coordinates `json:"waypoints"`
	Segments  []segmentResponse    `json:"segments"`
	Totals    stats.Totals         `json:"totals"`
	Summary   stats.Summary        `json:"summary"`
	Busy      bool                 `json:"busy"`
	Snap      bool                 `json:"snap"`
}

type snapRequest struct {
	Snap *bool `json:"snap"`
}

type replaceRequest struct {
	Waypoints []models.Coordinates `json:"waypoints"`
}

func newRouteResponse(snap planner.Snapshot, unit stats.Unit) routeResponse {
	segments := make([]segmentResponse, 0, len(snap.Segments))
	for _, seg := range snap.Segments {
		segments = append(segments, segmentResponse{
			Path:      seg.Path,
			Polyline:  geo.EncodePolyline(seg.Path),
			Distance:  seg.Distance,
			Elevation: seg.Elevation,
		})
	}

	waypoints := snap.Waypoints
	if waypoints == nil {
		waypoints = []models.Coordinates{}
	}

	totals := stats.Sum(snap.Segments)

	return routeResponse{
		Waypoints: waypoints,
		Segments:  segments,
		Totals:    totals,
		Summary:   stats.Summarize(totals, unit),
		Busy:      snap.Busy,
		Snap:      snap.Snap,
	}
}

// mutation runs a planner operation and answers with the resulting route.
// The operation keeps running if the client disconnects.
func (s *Server) mutation(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context) (planner.Snapshot, error),
) {
	unit, err := stats.ParseUnit(r.URL.Query().Get("unit"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	snap, err := op(context.WithoutCancel(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, newRouteResponse(snap, unit))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	unit, err := stats.ParseUnit(r.URL.Query().Get("unit"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, newRouteResponse(s.planner.Snapshot(), unit))
}

func (s *Server) handleAddWaypoint(w http.ResponseWriter, r *http.Request) {
	var point models.Coordinates
	if !s.decode(w, r, &point) {
		return
	}

	s.mutation(w, r, func(ctx context.Context) (planner.Snapshot, error) {
		return s.planner.AddWaypoint(ctx, point)
	})
}

func (s *Server) handleReplaceWaypoints(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mutation(w, r, func(ctx context.Context) (planner.Snapshot, error) {
		return s.planner.Replace(ctx, req.Waypoints)
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mutation(w, r, s.planner.Undo)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mutation(w, r, s.planner.Clear)
}

func (s *Server) handleSetSnap(w http.ResponseWriter, r *http.Request) {
	var req snapRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Snap == nil {
		s.writeError(w, r, http.StatusBadRequest, "bad_request", "snap is required")
		return
	}

	s.mutation(w, r, func(ctx context.Context) (planner.Snapshot, error) {
		return s.planner.SetSnap(ctx, *req.Snap)
	})
}

func (s *Server) handleExportGPX(w http.ResponseWriter, r *http.Request) {
	data, err := export.GPX(s.planner.Snapshot().ExportPoints())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeAttachment(w, r, "application/gpx+xml", export.FileName(s.now()), data)
}

func (s *Server) handleExportKML(w http.ResponseWriter, r *http.Request) {
	data, err := export.KML(s.planner.Snapshot().ExportPoints())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeAttachment(w, r, "application/vnd.google-earth.kml+xml", export.KMLFileName(s.now()), data)
}

func (s *Server) writeAttachment(w http.ResponseWriter, r *http.Request, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write export", "error", err)
	}
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.location)
}
