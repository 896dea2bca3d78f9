// Package planner computes minimum-cost walkable paths over a grid and
// translates them into timed motion waypoints.
//
// The planner package implements:
//   - A* search over the 4-connected neighbor graph with per-cell costs
//   - Deterministic tie-breaking for reproducible paths
//   - Typed not-found results distinguishing bad endpoints from
//     disconnected regions
//   - Path to waypoint translation with a fixed per-tile duration
//   - Cancellable background searches over grid snapshots
//
// Determinism:
//
// Neighbors expand in a fixed north, east, south, west order, the open
// queue breaks equal-priority ties by insertion sequence, and a cell's
// recorded cost is only replaced by a strictly better one. Repeated calls
// with identical inputs return identical paths.
//
// Usage:
//
//	path, err := planner.FindPath(g, start, goal)
//	if errors.Is(err, planner.ErrNoPath) {
//		// invalid endpoint or unreachable goal; not fatal
//	}
//
//	wps := planner.ToWaypoints(path, 32, 32, 200*time.Millisecond)
//
// Background Searches:
//
// StartSearch snapshots the grid at invocation and runs the search in a
// goroutine. Grid mutations issued after the call are not reflected in
// the in-flight search. Only one search should be in flight per mover;
// issuing a new one supersedes the previous result.
package planner
