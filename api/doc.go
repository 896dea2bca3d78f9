// Package api provides the HTTP REST API for the grid navigation service.
//
// The api package implements:
//   - RESTful endpoints for navigation operations
//   - Session management endpoints
//   - Map listing, retrieval, and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (body: {"map_id": "maze"})
//   - GET /api/sessions - List all sessions (sort, order, limit query params)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Navigation Operations:
//   - GET /api/sessions/{id}/state - Current navigation state
//   - POST /api/sessions/{id}/path - Request a path to a goal cell
//   - POST /api/sessions/{id}/obstacle - Place a runtime obstacle
//   - POST /api/sessions/{id}/advance - Consume one waypoint
//   - POST /api/sessions/{id}/reset - Reset session to the starting state
//   - GET /api/sessions/{id}/history - Path request history with pagination
//
// Maps:
//   - GET /api/maps - List available maps
//   - GET /api/maps/{name} - Get a map configuration
//   - POST /api/maps - Upload a map configuration
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Cells are addressed by column
// and row:
//
//	{
//	  "col": 4,
//	  "row": 2
//	}
//
// A path request responds with the outcome, the planned cell path, its
// total cost, the timed waypoints, and the updated session state:
//
//	{
//	  "success": true,
//	  "reason": "found",
//	  "goal": {"col": 4, "row": 2},
//	  "path": [{"col": 1, "row": 1}, ...],
//	  "cost": 6,
//	  "waypoints": [{"x": 64, "y": 32, "duration": 200000000}, ...],
//	  "state": { ... }
//	}
//
// Failed requests are still HTTP 200 with success=false and a reason of
// invalid_endpoint or unreachable; transport-level problems use error
// status codes.
//
// Usage:
//
//	server := api.NewServer(navService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
