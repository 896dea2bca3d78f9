package mover

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/planner"
)

// State identifies where a mover is in its request lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRequested State = "path_requested"
	StateMoving    State = "moving"
)

// Outcome classifies how a path request ended.
type Outcome string

const (
	OutcomeFound           Outcome = "found"
	OutcomeInvalidEndpoint Outcome = "invalid_endpoint"
	OutcomeUnreachable     Outcome = "unreachable"
	OutcomeSuperseded      Outcome = "superseded"
)

// RequestRecord is one entry in a mover's request history.
type RequestRecord struct {
	Seq       int       `json:"seq"`
	Start     grid.Cell `json:"start"`
	Goal      grid.Cell `json:"goal"`
	Outcome   Outcome   `json:"outcome"`
	PathLen   int       `json:"path_len,omitempty"`
	Cost      float64   `json:"cost,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is the typed outcome of a path request.
type Result struct {
	Outcome   Outcome            `json:"outcome"`
	Path      *planner.Path      `json:"path,omitempty"`
	Waypoints []planner.Waypoint `json:"waypoints,omitempty"`
	Err       error              `json:"-"`
}

// Mover owns one entity's navigation state on a grid.
type Mover struct {
	mu           sync.Mutex
	g            *grid.Grid
	start        grid.Cell
	pos          grid.Cell
	state        State
	stepDuration time.Duration

	path      *planner.Path
	waypoints []planner.Waypoint
	next      int

	inFlight *planner.Search

	history       []RequestRecord
	totalRequests int
}

// New creates a mover positioned at start on g. The per-tile duration is
// applied to every waypoint the mover emits.
func New(g *grid.Grid, start grid.Cell, stepDuration time.Duration) *Mover {
	return &Mover{
		g:            g,
		start:        start,
		pos:          start,
		state:        StateIdle,
		stepDuration: stepDuration,
	}
}

// Position returns the mover's current cell.
func (m *Mover) Position() grid.Cell {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// State returns the mover's lifecycle state.
func (m *Mover) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RequestPath computes a path from the current position to goal and, on
// success, enters the moving state with a fresh waypoint sequence. Any
// in-flight search or active playback is superseded first.
func (m *Mover) RequestPath(goal grid.Cell) *Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supersedeLocked()
	m.state = StateRequested

	path, err := planner.FindPath(m.g, m.pos, goal)
	return m.settleLocked(m.pos, goal, path, err)
}

// RequestPathAsync starts a background search from the current position
// to goal over a snapshot of the grid. Any previous search or playback is
// superseded. The caller resolves the outcome with Resolve.
func (m *Mover) RequestPathAsync(ctx context.Context, goal grid.Cell) *planner.Search {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supersedeLocked()
	m.state = StateRequested
	m.inFlight = planner.StartSearch(ctx, m.g, m.pos, goal)
	return m.inFlight
}

// Resolve blocks on a search started by RequestPathAsync and applies its
// result. A search that has been superseded by a newer request resolves
// to OutcomeSuperseded and leaves the mover untouched.
func (m *Mover) Resolve(s *planner.Search) *Result {
	path, err := s.Result()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight != s {
		return &Result{Outcome: OutcomeSuperseded, Err: planner.ErrCanceled}
	}
	m.inFlight = nil
	return m.settleLocked(s.Start, s.Goal, path, err)
}

// settleLocked records the request outcome and transitions state.
func (m *Mover) settleLocked(start, goal grid.Cell, path *planner.Path, err error) *Result {
	m.totalRequests++
	rec := RequestRecord{
		Seq:       m.totalRequests,
		Start:     start,
		Goal:      goal,
		Timestamp: time.Now(),
	}

	if err != nil {
		switch {
		case errors.Is(err, planner.ErrInvalidEndpoint):
			rec.Outcome = OutcomeInvalidEndpoint
		case errors.Is(err, planner.ErrUnreachable):
			rec.Outcome = OutcomeUnreachable
		default:
			rec.Outcome = OutcomeSuperseded
		}
		m.history = append(m.history, rec)
		m.state = StateIdle
		return &Result{Outcome: rec.Outcome, Err: err}
	}

	tileW, tileH := m.g.TileSize()
	wps := planner.ToWaypoints(path, tileW, tileH, m.stepDuration)

	rec.Outcome = OutcomeFound
	rec.PathLen = path.Len()
	rec.Cost = path.Cost
	m.history = append(m.history, rec)

	m.path = path
	m.waypoints = wps
	m.next = 1
	if len(wps) == 0 {
		// Already standing on the goal.
		m.state = StateIdle
	} else {
		m.state = StateMoving
	}

	return &Result{Outcome: OutcomeFound, Path: path, Waypoints: wps}
}

// Advance consumes the next waypoint, moving the mover one cell along its
// path. It returns the new position and whether playback is still active.
// Calling Advance while not moving is a no-op.
func (m *Mover) Advance() (grid.Cell, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateMoving || m.path == nil || m.next >= m.path.Len() {
		return m.pos, false
	}

	m.pos = m.path.Cells[m.next]
	m.next++

	if m.next >= m.path.Len() {
		m.clearPlaybackLocked()
		return m.pos, false
	}
	return m.pos, true
}

// Interrupt cancels playback when c lies on the un-traversed remainder of
// the active path. Used when an obstacle lands on the route mid-flight.
// Reports whether playback was cancelled.
func (m *Mover) Interrupt(c grid.Cell) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateMoving || m.path == nil {
		return false
	}
	for _, cell := range m.path.Cells[m.next:] {
		if cell == c {
			m.clearPlaybackLocked()
			return true
		}
	}
	return false
}

// Waypoints returns the waypoints not yet consumed by Advance.
func (m *Mover) Waypoints() []planner.Waypoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateMoving || m.path == nil {
		return []planner.Waypoint{}
	}
	// waypoints[i] targets path cell i+1.
	remaining := m.waypoints[m.next-1:]
	out := make([]planner.Waypoint, len(remaining))
	copy(out, remaining)
	return out
}

// Reset cancels any search and playback and returns the mover to its
// starting cell. Request history is preserved.
func (m *Mover) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supersedeLocked()
	m.pos = m.start
}

// History returns a copy of the request history, oldest first.
func (m *Mover) History() []RequestRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RequestRecord, len(m.history))
	copy(out, m.history)
	return out
}

// TotalRequests returns the number of path requests issued so far.
func (m *Mover) TotalRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalRequests
}

// SetPosition places the mover at c, cancelling any activity. Used when
// restoring a persisted session.
func (m *Mover) SetPosition(c grid.Cell) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supersedeLocked()
	m.pos = c
}

// RestoreHistory replaces the request history. Used when restoring a
// persisted session.
func (m *Mover) RestoreHistory(records []RequestRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = make([]RequestRecord, len(records))
	copy(m.history, records)
	m.totalRequests = len(records)
	if n := len(records); n > 0 && records[n-1].Seq > m.totalRequests {
		m.totalRequests = records[n-1].Seq
	}
}

func (m *Mover) supersedeLocked() {
	if m.inFlight != nil {
		m.inFlight.Cancel()
		m.inFlight = nil
	}
	m.clearPlaybackLocked()
}

func (m *Mover) clearPlaybackLocked() {
	m.path = nil
	m.waypoints = nil
	m.next = 0
	m.state = StateIdle
}
