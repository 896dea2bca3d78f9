// Package session provides session management for gridnav.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management and cleanup
//   - Pluggable persistence with file and SQLite backends
//
// Core Types:
//
// Manager is the main session manager handling all session operations.
// A session pairs a map configuration with the grid built from it and the
// mover navigating it, plus creation and last-access timestamps.
//
// Persistence:
//
// SessionPersistence abstracts storage. FilePersistence writes one JSON
// file per session; SQLitePersistence stores rows in a local SQLite
// database. Both persist only what cannot be derived: the map name, the
// runtime-blocked cells, the mover position, and the request history.
// The grid itself is rebuilt from the map configuration on load.
//
// Session Identifiers:
//
// Sessions use 4-character hexadecimal IDs generated from cryptographic
// randomness, matched case-insensitively.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", mapManager)
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", "courtyard", cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
package session
