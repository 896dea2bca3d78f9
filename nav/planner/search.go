package planner

import (
	"context"

	"github.com/google/uuid"

	"github.com/MHV33/gridnav/nav/grid"
)

// Search is a cancellable background path computation. The grid is
// snapshotted when the search starts, so later mutations do not affect
// the result. Result is valid once Done is closed.
type Search struct {
	ID     string
	Start  grid.Cell
	Goal   grid.Cell
	cancel context.CancelFunc
	done   chan struct{}
	path   *Path
	err    error
}

// StartSearch begins computing a path in the background against a
// snapshot of g taken now. The caller observes completion through Done
// and reads the outcome with Result.
func StartSearch(ctx context.Context, g *grid.Grid, start, goal grid.Cell) *Search {
	ctx, cancel := context.WithCancel(ctx)
	s := &Search{
		ID:     uuid.NewString(),
		Start:  start,
		Goal:   goal,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	snapshot := g.Clone()
	go func() {
		defer close(s.done)
		s.path, s.err = findPath(ctx, snapshot, start, goal)
	}()

	return s
}

// Done returns a channel closed when the search has finished, whether it
// completed, failed, or was canceled.
func (s *Search) Done() <-chan struct{} { return s.done }

// Result blocks until the search finishes and returns its outcome. A
// canceled search reports ErrCanceled.
func (s *Search) Result() (*Path, error) {
	<-s.done
	return s.path, s.err
}

// Cancel aborts an in-flight search. Safe to call more than once and
// after completion.
func (s *Search) Cancel() {
	s.cancel()
}
