package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/service"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	// Create a test server that returns a known response
	expectedResponse := map[string]interface{}{
		"id":       "test-session",
		"map_name": "courtyard",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/sessions/test-session", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	// Check that we got the expected response
	if response["id"] != expectedResponse["id"] {
		t.Errorf("Expected id %v, got %v", expectedResponse["id"], response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api/sessions", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/sessions", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	// Mock server that responds to session creation
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		resp := service.SessionInfo{
			ID:      "test-session-123",
			MapName: "courtyard",
			State: &service.NavState{
				MapName:  "courtyard",
				Width:    10,
				Height:   8,
				Position: grid.Cell{Col: 1, Row: 1},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	// Test create session without a map
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "create_session",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleCreateSession(ctx, request)
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	if result == nil {
		t.Fatal("Expected result, got nil")
	}

	// Check that the result contains the session ID
	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", resultStr.Text)
	}
}

func TestClient_findPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/abcd/path" {
			t.Errorf("Expected POST /api/sessions/abcd/path, got %s %s", r.Method, r.URL.Path)
		}

		resp := service.PathResult{
			Success: true,
			Reason:  "found",
			Goal:    grid.Cell{Col: 3, Row: 1},
			Path: []grid.Cell{
				{Col: 1, Row: 1},
				{Col: 2, Row: 1},
				{Col: 3, Row: 1},
			},
			Cost:  2,
			State: &service.NavState{MapName: "courtyard"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "find_path",
			Arguments: map[string]interface{}{
				"session_id": "abcd",
				"col":        float64(3),
				"row":        float64(1),
			},
		},
	}

	result, err := client.handleFindPath(ctx, request)
	if err != nil {
		t.Fatalf("findPath failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "✓ Path found to (3,1)") {
		t.Errorf("Expected path found message, got: %s", resultStr.Text)
	}
	if !strings.Contains(resultStr.Text, "(1,1) → (2,1) → (3,1)") {
		t.Errorf("Expected route in result, got: %s", resultStr.Text)
	}
}

func TestFormatNavState(t *testing.T) {
	state := &service.NavState{
		MapName:       "courtyard",
		Width:         10,
		Height:        8,
		Position:      grid.Cell{Col: 5, Row: 3},
		MoverState:    "moving",
		TotalRequests: 2,
		Blocked:       []grid.Cell{{Col: 4, Row: 4}},
		Layout:        []string{"##########", "#.@......#", "##########"},
	}

	result := formatNavState(state)

	// Check that all important fields are included
	expectedFields := []string{
		"Map: courtyard (10x8)",
		"Position: (5,3)",
		"State: moving",
		"Requests: 2",
		"Runtime obstacles: 1",
		"#.@......#",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatNavState_Nil(t *testing.T) {
	if got := formatNavState(nil); !strings.Contains(got, "No navigation state") {
		t.Errorf("Expected nil-state message, got: %s", got)
	}
}

func TestFormatPathResult_Failed(t *testing.T) {
	pathResult := &service.PathResult{
		Success: false,
		Reason:  "unreachable",
		Goal:    grid.Cell{Col: 7, Row: 7},
		State: &service.NavState{
			MapName:  "islands",
			Position: grid.Cell{Col: 1, Row: 1},
		},
	}

	result := formatPathResult(pathResult)

	if !strings.Contains(result, "✗ No path to (7,7): unreachable") {
		t.Errorf("Expected failure message in result, got: %s", result)
	}
}

func TestClient_handleNavInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "nav_instructions",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleNavInstructions(ctx, request)
	if err != nil {
		t.Fatalf("handleNavInstructions failed: %v", err)
	}

	if result == nil {
		t.Fatal("Expected result, got nil")
	}

	// Check that the result contains the service instructions
	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	expectedContent := []string{
		"Grid Navigation Service - Complete Instructions",
		"COORDINATES:",
		"GRID RENDERING:",
		"PATH REQUESTS:",
		"invalid_endpoint",
		"unreachable",
		"COSTS:",
		"WAYPOINTS:",
		"OBSTACLES:",
		"TYPICAL WORKFLOW:",
		"SESSION MANAGEMENT:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(resultStr.Text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, resultStr.Text)
		}
	}
}

func TestClient_Integration(t *testing.T) {
	// Verifies the client can be created and initialized without errors
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Failed to create client")
	}

	// Test that the MCP server has been properly configured with tools
	if client.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}

	if client.baseURL == "" {
		t.Error("Base URL not set")
	}

	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
}
