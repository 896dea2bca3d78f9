// Package mcp provides a Model Context Protocol server for the grid
// navigation service.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for navigation operations
//   - Thin proxying to the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - nav_state: Get current session state with grid visualization
//   - find_path: Request a minimum-cost path to a goal cell
//   - place_obstacle: Block a cell at runtime
//   - advance: Consume one waypoint along the active path
//   - reset_session: Restore the session to its starting state
//   - request_history: Retrieve path request history with pagination
//   - create_session: Create new session with map selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_maps: List available maps
//   - describe_cell: Inspect walkability of a single cell
//   - nav_instructions: Get detailed usage instructions
//
// Architecture:
//
// The Client does not touch the navigation engine directly; every tool
// call is forwarded to the REST API, so the MCP surface stays in sync
// with HTTP clients and the WebSocket feed. The REST server must be
// running for the tools to work.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: Streamable HTTP endpoint for remote MCP integration
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Plan and replan routes on tile maps
//   - Simulate dynamic obstacles and observe interruptions
//   - Manage multiple navigation sessions
//   - Inspect path request history
package mcp
