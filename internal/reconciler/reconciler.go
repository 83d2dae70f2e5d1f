// Package reconciler keeps the segment list in step with a changing waypoint list,
// recomputing only the segments a change actually affects.
package reconciler

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/UnknownOlympus/runcraft/internal/metrics"
	"github.com/UnknownOlympus/runcraft/internal/models"
)

// Transition classifies how the waypoint list changed between two reconciliations.
type Transition string

const (
	// TransitionCleared: fewer than two waypoints remain, so there are no segments.
	TransitionCleared Transition = "cleared"
	// TransitionAppended: exactly one waypoint was added at the end.
	TransitionAppended Transition = "appended"
	// TransitionRemovedLast: exactly one waypoint was removed and at least one remains.
	TransitionRemovedLast Transition = "removed_last"
	// TransitionRebuild: anything else; every segment is resolved again.
	TransitionRebuild Transition = "rebuild"
)

// Classify picks the transition from previous to current. Cases are checked in order:
// cleared, appended, removed last, rebuild.
func Classify(previous, current []models.Coordinates) Transition {
	switch {
	case len(current) < 2:
		return TransitionCleared
	case len(current) == len(previous)+1:
		return TransitionAppended
	case len(current) == len(previous)-1 && len(current) > 0:
		return TransitionRemovedLast
	default:
		return TransitionRebuild
	}
}

// Event is a change dispatched to the reconciler.
type Event interface {
	event()
}

// WaypointsChanged replaces the waypoint list.
type WaypointsChanged struct {
	Waypoints []models.Coordinates
}

// SnapToggled switches snapping for the current waypoint list.
type SnapToggled struct {
	Snap bool
}

// Cleared empties the route.
type Cleared struct{}

func (WaypointsChanged) event() {}
func (SnapToggled) event()      {}
func (Cleared) event()          {}

// SegmentResolver produces one segment between two waypoints. *segment.Resolver implements it.
type SegmentResolver interface {
	Resolve(ctx context.Context, start, end models.Coordinates, snap bool) *models.Segment
}

// State is a published snapshot of the reconciler.
// Segments[i] connects Waypoints[i] and Waypoints[i+1] whenever Busy is false.
type State struct {
	Waypoints []models.Coordinates
	Segments  []*models.Segment
	Snap      bool
	Busy      bool
}

// Observer receives every published State, in publication order.
type Observer func(State)

// Reconciler owns the last reconciled waypoint list and its segments.
// Apply calls are serialized: a change arriving while another is being fetched waits for it.
type Reconciler struct {
	log      *slog.Logger
	resolver SegmentResolver
	metrics  *metrics.Metrics

	applyMu sync.Mutex

	mu        sync.RWMutex
	previous  []models.Coordinates
	segments  []*models.Segment
	snap      bool
	busy      bool
	observers []Observer
}

// New creates a Reconciler with no waypoints. metrics may be nil.
func New(log *slog.Logger, resolver SegmentResolver, snap bool, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		log:      log,
		resolver: resolver,
		metrics:  m,
		snap:     snap,
	}
}

// Subscribe registers an observer for future publications.
func (r *Reconciler) Subscribe(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, observer)
}

// State returns the latest published state. It does not wait for an in-flight Apply.
func (r *Reconciler) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot()
}

// Busy reports whether segments are being fetched right now.
func (r *Reconciler) Busy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.busy
}

// Apply reconciles the segment list with ev and returns the resulting state.
func (r *Reconciler) Apply(ctx context.Context, ev Event) State {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	r.mu.RLock()
	previous := r.previous
	segments := r.segments
	snap := r.snap
	r.mu.RUnlock()

	var current []models.Coordinates
	switch e := ev.(type) {
	case WaypointsChanged:
		current = slices.Clone(e.Waypoints)
	case SnapToggled:
		current = previous
		snap = e.Snap
	case Cleared:
		current = nil
	}

	transition := Classify(previous, current)
	r.metrics.Reconciled(string(transition))
	r.log.DebugContext(ctx, "Reconciling segments",
		"transition", transition, "previous", len(previous), "current", len(current), "snap", snap)

	var next []*models.Segment
	switch transition {
	case TransitionCleared:
		next = nil
	case TransitionRemovedLast:
		next = slices.Clone(segments[:max(len(segments)-1, 0)])
	case TransitionAppended:
		r.setBusy(snap)
		n := len(current)
		seg := r.resolver.Resolve(ctx, current[n-2], current[n-1], snap)
		next = append(slices.Clone(segments), seg)
	case TransitionRebuild:
		r.setBusy(snap)
		next = make([]*models.Segment, 0, len(current)-1)
		for i := 0; i < len(current)-1; i++ {
			next = append(next, r.resolver.Resolve(ctx, current[i], current[i+1], snap))
		}
	}

	return r.publish(current, next, snap)
}

// setBusy publishes the busy flag together with the segments that are still current.
func (r *Reconciler) setBusy(snap bool) {
	r.mu.Lock()
	r.busy = true
	r.snap = snap
	state := r.snapshot()
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	r.metrics.SetActive(true)
	notify(observers, state)
}

// publish installs the new segment list and clears the busy flag in one step.
func (r *Reconciler) publish(current []models.Coordinates, segments []*models.Segment, snap bool) State {
	r.mu.Lock()
	r.previous = current
	r.segments = segments
	r.snap = snap
	r.busy = false
	state := r.snapshot()
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	r.metrics.SetActive(false)
	notify(observers, state)

	return state
}

// snapshot copies the state; callers hold r.mu.
func (r *Reconciler) snapshot() State {
	return State{
		Waypoints: slices.Clone(r.previous),
		Segments:  slices.Clone(r.segments),
		Snap:      r.snap,
		Busy:      r.busy,
	}
}

func notify(observers []Observer, state State) {
	for _, observe := range observers {
		observe(state)
	}
}
