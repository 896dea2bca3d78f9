package main

import (
	"log"
	"math/rand"
	"time"
)

// SweepStrategy walks every walkable cell of a map as a path goal. The plan
// is derived from the session's rendered layout, so it needs no map file.
type SweepStrategy struct {
	width   int
	height  int
	goals   []Cell
	next    int
	blocked map[Cell]bool
	rng     *rand.Rand
}

// NewSweepStrategy scans the layout for walkable cells. With a non-nil rng
// the goal order is shuffled, otherwise goals run in row-major scan order.
func NewSweepStrategy(state *NavState, rng *rand.Rand) *SweepStrategy {
	s := &SweepStrategy{
		width:   state.Width,
		height:  state.Height,
		blocked: make(map[Cell]bool),
		rng:     rng,
	}

	for row, line := range state.Layout {
		for col, ch := range line {
			if ch == '#' {
				continue
			}
			s.goals = append(s.goals, Cell{Col: col, Row: row})
		}
	}

	if rng != nil {
		rng.Shuffle(len(s.goals), func(i, j int) {
			s.goals[i], s.goals[j] = s.goals[j], s.goals[i]
		})
	}

	return s
}

// Remaining reports how many goals have not been requested yet.
func (s *SweepStrategy) Remaining() int {
	return len(s.goals) - s.next
}

// NextGoal returns the next planned goal, skipping cells that picked up a
// runtime obstacle since planning.
func (s *SweepStrategy) NextGoal() (Cell, bool) {
	for s.next < len(s.goals) {
		goal := s.goals[s.next]
		s.next++
		if s.blocked[goal] {
			continue
		}
		return goal, true
	}
	return Cell{}, false
}

// MarkBlocked records a cell the server accepted as an obstacle so the
// sweep stops targeting it.
func (s *SweepStrategy) MarkBlocked(cell Cell) {
	s.blocked[cell] = true
}

// RandomObstacle picks an untargeted walkable cell to block, avoiding the
// mover's current position.
func (s *SweepStrategy) RandomObstacle(position Cell) (Cell, bool) {
	if s.rng == nil || s.next >= len(s.goals) {
		return Cell{}, false
	}

	// Only pick from cells the sweep has not reached yet, so an obstacle
	// never invalidates an already-recorded outcome.
	for attempts := 0; attempts < 10; attempts++ {
		idx := s.next + s.rng.Intn(len(s.goals)-s.next)
		cell := s.goals[idx]
		if cell == position || s.blocked[cell] {
			continue
		}
		return cell, true
	}
	return Cell{}, false
}

// Stats accumulates per-request outcomes and latencies for the final report.
type Stats struct {
	Found       int
	Invalid     int
	Unreachable int
	Superseded  int
	Errors      int
	Obstacles   int
	Steps       int

	TotalCells int
	TotalCost  float64

	totalLatency time.Duration
	minLatency   time.Duration
	maxLatency   time.Duration
	samples      int
}

func NewStats() *Stats {
	return &Stats{}
}

// Record tallies one path response and its round-trip latency.
func (st *Stats) Record(resp *PathResponse, elapsed time.Duration) {
	switch resp.Reason {
	case "found":
		st.Found++
		st.TotalCells += len(resp.Path)
		st.TotalCost += resp.Cost
	case "invalid_endpoint":
		st.Invalid++
	case "unreachable":
		st.Unreachable++
	case "superseded":
		st.Superseded++
	default:
		st.Errors++
	}

	st.totalLatency += elapsed
	if st.samples == 0 || elapsed < st.minLatency {
		st.minLatency = elapsed
	}
	if elapsed > st.maxLatency {
		st.maxLatency = elapsed
	}
	st.samples++
}

// Report prints the summary for a finished run.
func (st *Stats) Report(goals int) {
	log.Printf("")
	log.Printf("=== Benchmark complete: %d goals ===", goals)
	log.Printf("  found=%d invalid=%d unreachable=%d superseded=%d errors=%d",
		st.Found, st.Invalid, st.Unreachable, st.Superseded, st.Errors)
	if st.Found > 0 {
		log.Printf("  avg path: %.1f cells, %.1f cost",
			float64(st.TotalCells)/float64(st.Found), st.TotalCost/float64(st.Found))
	}
	if st.samples > 0 {
		avg := st.totalLatency / time.Duration(st.samples)
		log.Printf("  latency: min=%s avg=%s max=%s",
			fmtDur(st.minLatency), fmtDur(avg), fmtDur(st.maxLatency))
	}
	if st.Obstacles > 0 {
		log.Printf("  obstacles placed: %d", st.Obstacles)
	}
	if st.Steps > 0 {
		log.Printf("  waypoints walked: %d", st.Steps)
	}
}

func fmtDur(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
