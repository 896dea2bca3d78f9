// Package mover tracks one entity's path-request lifecycle and waypoint
// playback position.
//
// A Mover moves through the states idle, path_requested, and moving. A
// path request while moving supersedes the in-flight search and the
// active waypoint sequence; the superseded result is discarded. The
// external playback layer drives Advance once per consumed waypoint; the
// mover only keeps the bookkeeping (current cell, remaining waypoints,
// request history).
//
// The mover never logs and performs no I/O. It is safe for concurrent use,
// though the expected discipline is a single game-loop owner issuing all
// requests and advances sequentially.
package mover
