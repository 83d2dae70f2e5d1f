// Package planner owns the waypoint list a runner edits and feeds every change to the reconciler.
package planner

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/internal/reconciler"
)

var (
	// ErrBusy is returned by Undo and Clear while segments are being fetched.
	ErrBusy = errors.New("route is being calculated")
	// ErrNoWaypoints is returned by Undo on an empty route.
	ErrNoWaypoints = errors.New("route has no waypoints")
	// ErrInvalidCoordinates is returned for points outside the WGS84 ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Snapshot is a consistent view of the route for presentation.
type Snapshot struct {
	Waypoints []models.Coordinates // Waypoints as edited, including ones still being reconciled.
	Segments  []*models.Segment
	Snap      bool
	Busy      bool
}

// Planner serializes route edits with their reconciliation.
type Planner struct {
	log        *slog.Logger
	reconciler *reconciler.Reconciler

	// editMu is held across a mutation and its reconciliation.
	editMu sync.Mutex

	mu        sync.RWMutex
	waypoints []models.Coordinates
	snap      bool
}

// New creates an empty planner. Its snap setting starts from the reconciler's.
func New(log *slog.Logger, rec *reconciler.Reconciler) *Planner {
	return &Planner{
		log:        log,
		reconciler: rec,
		snap:       rec.State().Snap,
	}
}

// AddWaypoint appends c to the route.
func (p *Planner) AddWaypoint(ctx context.Context, c models.Coordinates) (Snapshot, error) {
	if !c.Valid() {
		return Snapshot{}, ErrInvalidCoordinates
	}

	p.editMu.Lock()
	defer p.editMu.Unlock()

	p.mu.Lock()
	p.waypoints = append(slices.Clone(p.waypoints), c)
	waypoints := p.waypoints
	p.mu.Unlock()

	p.log.DebugContext(ctx, "Waypoint added", "point", c.Key(), "count", len(waypoints))
	p.reconciler.Apply(ctx, reconciler.WaypointsChanged{Waypoints: waypoints})

	return p.Snapshot(), nil
}

// Undo removes the last waypoint.
func (p *Planner) Undo(ctx context.Context) (Snapshot, error) {
	if p.reconciler.Busy() {
		return Snapshot{}, ErrBusy
	}

	p.editMu.Lock()
	defer p.editMu.Unlock()

	p.mu.Lock()
	if len(p.waypoints) == 0 {
		p.mu.Unlock()
		return Snapshot{}, ErrNoWaypoints
	}
	p.waypoints = slices.Clone(p.waypoints[:len(p.waypoints)-1])
	waypoints := p.waypoints
	p.mu.Unlock()

	p.log.DebugContext(ctx, "Last waypoint removed", "count", len(waypoints))
	p.reconciler.Apply(ctx, reconciler.WaypointsChanged{Waypoints: waypoints})

	return p.Snapshot(), nil
}

// Clear removes every waypoint. Clearing an empty route is a no-op.
func (p *Planner) Clear(ctx context.Context) (Snapshot, error) {
	if p.reconciler.Busy() {
		return Snapshot{}, ErrBusy
	}

	p.editMu.Lock()
	defer p.editMu.Unlock()

	p.mu.Lock()
	p.waypoints = nil
	p.mu.Unlock()

	p.log.DebugContext(ctx, "Route cleared")
	p.reconciler.Apply(ctx, reconciler.Cleared{})

	return p.Snapshot(), nil
}

// SetSnap switches snapping to paths. Setting the current value does nothing.
func (p *Planner) SetSnap(ctx context.Context, snap bool) (Snapshot, error) {
	p.editMu.Lock()
	defer p.editMu.Unlock()

	p.mu.Lock()
	if p.snap == snap {
		p.mu.Unlock()
		return p.Snapshot(), nil
	}
	p.snap = snap
	p.mu.Unlock()

	p.log.DebugContext(ctx, "Snap to path toggled", "snap", snap)
	p.reconciler.Apply(ctx, reconciler.SnapToggled{Snap: snap})

	return p.Snapshot(), nil
}

// Replace swaps the whole waypoint list, e.g. when a saved route is loaded.
func (p *Planner) Replace(ctx context.Context, waypoints []models.Coordinates) (Snapshot, error) {
	for _, c := range waypoints {
		if !c.Valid() {
			return Snapshot{}, ErrInvalidCoordinates
		}
	}

	p.editMu.Lock()
	defer p.editMu.Unlock()

	p.mu.Lock()
	p.waypoints = slices.Clone(waypoints)
	current := p.waypoints
	p.mu.Unlock()

	p.log.DebugContext(ctx, "Waypoints replaced", "count", len(current))
	p.reconciler.Apply(ctx, reconciler.WaypointsChanged{Waypoints: current})

	return p.Snapshot(), nil
}

// Snapshot returns the current waypoints with the latest published segments. It never blocks on a fetch.
func (p *Planner) Snapshot() Snapshot {
	p.mu.RLock()
	waypoints := slices.Clone(p.waypoints)
	snap := p.snap
	p.mu.RUnlock()

	state := p.reconciler.State()

	return Snapshot{
		Waypoints: waypoints,
		Segments:  state.Segments,
		Snap:      snap,
		Busy:      state.Busy,
	}
}

// Path joins the segment paths in order. A lone waypoint is its own path.
func (s Snapshot) Path() []models.Coordinates {
	if len(s.Segments) == 0 && len(s.Waypoints) == 1 {
		return []models.Coordinates{s.Waypoints[0]}
	}

	var path []models.Coordinates
	for _, seg := range s.Segments {
		path = append(path, seg.Path...)
	}

	return path
}

// ExportPoints is the path to export: the joined segments, or the raw waypoints
// while no segment has been computed.
func (s Snapshot) ExportPoints() []models.Coordinates {
	if path := s.Path(); len(path) > 0 {
		return path
	}

	return slices.Clone(s.Waypoints)
}
