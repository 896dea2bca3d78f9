package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Navigation Service",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Navigation Service - MCP Interface

This is a thin client that proxies all requests to the REST API server.

WHAT THIS SERVICE DOES:
Plans minimum-cost paths on tile-based maps. Each session holds a map,
a mover, and a set of runtime obstacles. Paths are returned as cell
sequences plus timed waypoints.

AVAILABLE TOOLS:
- nav_state: Get current session state including the rendered grid
- find_path: Request a path from the mover's position to a goal cell
- place_obstacle: Block a cell at runtime (interrupts affected paths)
- advance: Consume one waypoint, moving the mover one cell
- reset_session: Restore the session to its starting state
- request_history: View past path requests
- create_session: Create new navigation session
- get_session: Get session details
- list_sessions: List all active sessions
- list_maps: List available maps
- describe_cell: Get walkability and cost for a specific cell
- nav_instructions: Get detailed usage instructions

GRID RENDERING: '.' walkable, '#' blocked, '@' the mover's position.
Cells are addressed as (col,row), 0-based, origin top-left.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new navigation session with optional map selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the map to use (optional, defaults to the default map)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active navigation sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Navigation operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "nav_state",
		Description: "Get the current navigation state including the rendered grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNavState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Request a minimum-cost path from the mover's position to a goal cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Goal column (0-based)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Goal row (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why this goal was chosen (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "col", "row"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_obstacle",
		Description: "Block a cell at runtime. Interrupts the current path playback if the obstacle lands on an un-traversed cell of the active path.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell to block (0-based)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell to block (0-based)",
				},
			},
			Required: []string{"session_id", "col", "row"},
		},
	}, c.handlePlaceObstacle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Consume one waypoint, moving the mover one cell along its active path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Reset the session to its starting state, clearing runtime obstacles",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "request_history",
		Description: "Get path request history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRequestHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List available maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "nav_instructions",
		Description: "Get detailed navigation service instructions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleNavInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get walkability and traversal cost for a specific grid cell. Useful for verifying whether a goal is valid before requesting a path.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell to describe (0-based)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "col", "row"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	mapID, _ := args["map_id"].(string)

	body := map[string]string{}
	if mapID != "" {
		body["map_id"] = mapID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nMap: %s\n", session.ID, session.MapName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Map: %s, Created: %s)\n",
			s.ID, s.MapName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleNavState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state service.NavState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatNavState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	col := int(args["col"].(float64))
	row := int(args["row"].(float64))
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]int{
		"col": col,
		"row": row,
	}

	var result service.PathResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/path", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatPathResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handlePlaceObstacle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	col := int(args["col"].(float64))
	row := int(args["row"].(float64))

	body := map[string]int{
		"col": col,
		"row": row,
	}

	var result service.ObstacleResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/obstacle", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := ""
	if result.Applied {
		response = fmt.Sprintf("✓ Obstacle placed at (%d,%d)\n", result.Cell.Col, result.Cell.Row)
	} else {
		response = fmt.Sprintf("✗ Obstacle at (%d,%d) not applied (out of bounds or already blocked)\n", result.Cell.Col, result.Cell.Row)
	}
	if result.Interrupted {
		response += "Active path playback was interrupted - request a new path.\n"
	}

	response += "\n" + formatNavState(result.State)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.AdvanceResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/advance", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Position: (%d,%d)\n", result.Position.Col, result.Position.Row)
	if result.Moving {
		response += "Still moving - waypoints remain.\n"
	} else {
		response += "Arrived - no waypoints remain.\n"
	}

	response += "\n" + formatNavState(result.State)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *service.NavState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatNavState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRequestHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []service.MapInfo
	err := c.apiCall("GET", "/api/maps", nil, &maps)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Maps:\n\n"
	for _, m := range maps {
		result += fmt.Sprintf("• %s\n  %s\n  Grid: %dx%d\n\n",
			m.MapID, m.Description, m.Width, m.Height)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleNavInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Grid Navigation Service - Complete Instructions

WHAT THIS SERVICE DOES:
Plans minimum-cost paths on tile-based maps. Each session holds one map,
one mover, and a set of runtime obstacles. You request paths, place
obstacles, and step the mover along its waypoints.

COORDINATES:
Cells are addressed as (col,row), 0-based, origin at the top-left.
Movement is 4-directional (no diagonals).

GRID RENDERING:
• @ - the mover's current position
• . - walkable cell
• # - blocked cell (map terrain or runtime obstacle)

PATH REQUESTS:
- find_path plans from the mover's CURRENT position to the goal.
- A new request supersedes any in-flight or active path.
- Outcomes:
  • found            - path available, waypoints loaded
  • invalid_endpoint - goal is out of bounds or on a blocked cell
  • unreachable      - goal is walkable but no route exists
- There is no snapping: a blocked goal fails, it is not redirected to
  the nearest walkable cell.
- Paths are deterministic: identical state yields identical paths.

COSTS:
Tiles can declare a traversal cost (default 1). The planner minimizes
total cost, so a longer route through cheap tiles can beat a short
route through expensive ones. The reported cost excludes the start
cell and counts each entered cell.

WAYPOINTS:
A found path of N cells yields N-1 timed waypoints. Each waypoint has
pixel coordinates (cell top-left times tile size) and a per-tile
duration. Use advance to consume one waypoint at a time.

OBSTACLES:
place_obstacle blocks a walkable cell at runtime. If the obstacle
lands on a not-yet-traversed cell of the active path, playback is
interrupted and you must request a new path. Obstacles persist until
reset_session.

TYPICAL WORKFLOW:
1. create_session (optionally choosing a map via list_maps)
2. nav_state to see the grid
3. find_path to a goal cell
4. advance repeatedly to walk the path
5. place_obstacle to simulate dynamic blockers, then re-plan

SESSION MANAGEMENT:
- Multiple sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent maps, obstacles, and history`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	col := int(args["col"].(float64))
	row := int(args["row"].(float64))

	// Get the current state to access the rendered grid
	var state service.NavState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Check bounds
	if col < 0 || col >= state.Width || row < 0 || row >= state.Height {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d, %d) is out of bounds. Grid is %dx%d (cols 0-%d, rows 0-%d)",
			col, row, state.Width, state.Height, state.Width-1, state.Height-1)), nil
	}

	cellChar := "."
	if row < len(state.Layout) && col < len(state.Layout[row]) {
		cellChar = string(state.Layout[row][col])
	}

	var description string
	walkable := false
	switch cellChar {
	case "@":
		walkable = true
		description = "The mover's current position"
	case ".":
		walkable = true
		description = "Walkable cell - valid path goal"
	case "#":
		description = "Blocked cell (map terrain or runtime obstacle) - paths to it fail with invalid_endpoint"
	default:
		description = "Unknown cell rendering"
	}

	runtimeObstacle := false
	for _, b := range state.Blocked {
		if b == (grid.Cell{Col: col, Row: row}) {
			runtimeObstacle = true
			break
		}
	}

	result := fmt.Sprintf(`Cell at (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %s
Walkable: %v
Runtime obstacle: %v
Description: %s`,
		col, row,
		cellChar,
		walkable,
		runtimeObstacle,
		description)

	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nMap: %s\nCreated: %s\n\n%s",
		session.ID, session.MapName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatNavState(session.State))
}

func formatNavState(state *service.NavState) string {
	if state == nil {
		return "No navigation state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Map: %s (%dx%d) | Position: (%d,%d) | State: %s | Requests: %d\n",
		state.MapName, state.Width, state.Height,
		state.Position.Col, state.Position.Row,
		state.MoverState, state.TotalRequests))

	if len(state.Blocked) > 0 {
		result.WriteString(fmt.Sprintf("Runtime obstacles: %d\n", len(state.Blocked)))
	}

	if len(state.Waypoints) > 0 {
		result.WriteString(fmt.Sprintf("Pending waypoints: %d\n", len(state.Waypoints)))
	}

	result.WriteString("\n")
	for _, row := range state.Layout {
		result.WriteString(row)
		result.WriteString("\n")
	}

	return result.String()
}

func formatPathResult(result *service.PathResult) string {
	response := ""
	if result.Success {
		response = fmt.Sprintf("✓ Path found to (%d,%d)\n", result.Goal.Col, result.Goal.Row)
		response += fmt.Sprintf("Length: %d cells | Cost: %.1f | Waypoints: %d\n",
			len(result.Path), result.Cost, len(result.Waypoints))

		if len(result.Path) > 0 {
			cells := make([]string, 0, len(result.Path))
			for _, c := range result.Path {
				cells = append(cells, fmt.Sprintf("(%d,%d)", c.Col, c.Row))
			}
			response += "Route: " + strings.Join(cells, " → ") + "\n"
		}
	} else {
		response = fmt.Sprintf("✗ No path to (%d,%d): %s\n", result.Goal.Col, result.Goal.Row, result.Reason)
		if result.Message != "" {
			response += result.Message + "\n"
		}
	}

	response += "\n" + formatNavState(result.State)
	return response
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Path Request History (Page %d/%d) — Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalCount)

	for _, req := range history.Requests {
		status := "✓"
		if req.Outcome != "found" {
			status = "✗"
		}
		result += fmt.Sprintf("%d. (%d,%d)→(%d,%d) %s %s [len=%d cost=%.1f]\n",
			req.Seq, req.Start.Col, req.Start.Row, req.Goal.Col, req.Goal.Row,
			status, req.Outcome, req.PathLen, req.Cost)
	}

	return result
}
