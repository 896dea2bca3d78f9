// Package websocket provides WebSocket transport for the grid navigation
// service.
//
// The websocket package implements:
//   - Real-time state broadcasting to connected clients
//   - Session-aware WebSocket connections
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine pair that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Messages are JSON-encoded. Every state change pushes a full NavState
// snapshot, tagged with the session ID and an event name:
//
//	{"session_id": "abc1", "event": "state_update", "state": { ... }}
//
// Discrete events (path_found, path_not_found, obstacle_placed, moved,
// reset) carry a data payload instead of the full state.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session
// ID via query parameter (?session=abc1) when establishing the
// connection. State updates are broadcast only to clients connected to
// the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// inside an HTTP handler, after validating the session:
//	hub.ServeWS(w, r, sessionID)
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive broadcasts
// simultaneously without blocking each other.
package websocket
