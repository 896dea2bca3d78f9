package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/mover"
	"github.com/MHV33/gridnav/nav/service"
	"github.com/MHV33/gridnav/transport/websocket"
)

// MockNavService implements service.NavService for testing
type MockNavService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, mapName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Navigation Operations
	RequestPathFunc   func(ctx context.Context, sessionID string, goal grid.Cell) (*service.PathResult, error)
	PlaceObstacleFunc func(ctx context.Context, sessionID string, cell grid.Cell) (*service.ObstacleResult, error)
	AdvanceFunc       func(ctx context.Context, sessionID string) (*service.AdvanceResult, error)
	ResetFunc         func(ctx context.Context, sessionID string) (*service.NavState, error)

	// State
	GetStateFunc          func(ctx context.Context, sessionID string) (*service.NavState, error)
	GetRequestHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Maps
	ListMapsFunc func(ctx context.Context) ([]*service.MapInfo, error)
	LoadMapFunc  func(ctx context.Context, mapName string) (*grid.MapConfig, error)
	SaveMapFunc  func(ctx context.Context, mapName string, cfg *grid.MapConfig) error
}

func (m *MockNavService) CreateSession(ctx context.Context, mapName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, mapName)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		MapName:   mapName,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockNavService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		MapName:   "test-map",
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockNavService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockNavService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockNavService) RequestPath(ctx context.Context, sessionID string, goal grid.Cell) (*service.PathResult, error) {
	if m.RequestPathFunc != nil {
		return m.RequestPathFunc(ctx, sessionID, goal)
	}
	return &service.PathResult{
		Success: true,
		Reason:  "found",
		Goal:    goal,
		State:   &service.NavState{},
	}, nil
}

func (m *MockNavService) PlaceObstacle(ctx context.Context, sessionID string, cell grid.Cell) (*service.ObstacleResult, error) {
	if m.PlaceObstacleFunc != nil {
		return m.PlaceObstacleFunc(ctx, sessionID, cell)
	}
	return &service.ObstacleResult{
		Cell:    cell,
		Applied: true,
		State:   &service.NavState{},
	}, nil
}

func (m *MockNavService) Advance(ctx context.Context, sessionID string) (*service.AdvanceResult, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, sessionID)
	}
	return &service.AdvanceResult{
		State: &service.NavState{},
	}, nil
}

func (m *MockNavService) Reset(ctx context.Context, sessionID string) (*service.NavState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &service.NavState{}, nil
}

func (m *MockNavService) GetState(ctx context.Context, sessionID string) (*service.NavState, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, sessionID)
	}
	return &service.NavState{}, nil
}

func (m *MockNavService) GetRequestHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetRequestHistoryFunc != nil {
		return m.GetRequestHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Requests:   []mover.RequestRecord{},
		TotalCount: 0,
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockNavService) ListMaps(ctx context.Context) ([]*service.MapInfo, error) {
	if m.ListMapsFunc != nil {
		return m.ListMapsFunc(ctx)
	}
	return []*service.MapInfo{}, nil
}

func (m *MockNavService) LoadMap(ctx context.Context, mapName string) (*grid.MapConfig, error) {
	if m.LoadMapFunc != nil {
		return m.LoadMapFunc(ctx, mapName)
	}
	return &grid.MapConfig{
		Name:        mapName,
		Description: "Test map",
	}, nil
}

func (m *MockNavService) SaveMap(ctx context.Context, mapName string, cfg *grid.MapConfig) error {
	if m.SaveMapFunc != nil {
		return m.SaveMapFunc(ctx, mapName, cfg)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockNavService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestCreateSession(t *testing.T) {
	mock := &MockNavService{
		CreateSessionFunc: func(ctx context.Context, mapName string) (*service.SessionInfo, error) {
			return &service.SessionInfo{
				ID:      "abcd",
				MapName: mapName,
			}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions", map[string]string{"map_id": "maze"})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	var info service.SessionInfo
	decodeBody(t, rec, &info)
	if info.ID != "abcd" {
		t.Errorf("expected session ID 'abcd', got %q", info.ID)
	}
	if info.MapName != "maze" {
		t.Errorf("expected map name 'maze', got %q", info.MapName)
	}
}

func TestCreateSession_DeprecatedMapName(t *testing.T) {
	var gotMapName string
	mock := &MockNavService{
		CreateSessionFunc: func(ctx context.Context, mapName string) (*service.SessionInfo, error) {
			gotMapName = mapName
			return &service.SessionInfo{ID: "abcd", MapName: mapName}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions", map[string]string{"map_name": "courtyard"})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if gotMapName != "courtyard" {
		t.Errorf("expected map_name fallback 'courtyard', got %q", gotMapName)
	}
}

func TestCreateSession_ServiceError(t *testing.T) {
	mock := &MockNavService{
		CreateSessionFunc: func(ctx context.Context, mapName string) (*service.SessionInfo, error) {
			return nil, fmt.Errorf("map '%s' not found", mapName)
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions", map[string]string{"map_id": "nonexistent"})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}

	var errResp map[string]string
	decodeBody(t, rec, &errResp)
	if errResp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestListSessions_SortAndLimit(t *testing.T) {
	now := time.Now()
	mock := &MockNavService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now.Add(-1 * time.Hour)},
			}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("GET", "/api/sessions?sort=created&order=desc&limit=2", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	decodeBody(t, rec, &resp)

	if resp.Count != 2 {
		t.Fatalf("expected 2 sessions, got %d", resp.Count)
	}
	if resp.Sessions[0].ID != "new" || resp.Sessions[1].ID != "mid" {
		t.Errorf("expected [new, mid], got [%s, %s]", resp.Sessions[0].ID, resp.Sessions[1].ID)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	mock := &MockNavService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, fmt.Errorf("session not found")
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("GET", "/api/sessions/zzzz", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	deleted := ""
	mock := &MockNavService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("DELETE", "/api/sessions/abcd", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if deleted != "abcd" {
		t.Errorf("expected session 'abcd' deleted, got %q", deleted)
	}
}

func TestRequestPath(t *testing.T) {
	mock := &MockNavService{
		RequestPathFunc: func(ctx context.Context, sessionID string, goal grid.Cell) (*service.PathResult, error) {
			return &service.PathResult{
				Success: true,
				Reason:  "found",
				Goal:    goal,
				Path: []grid.Cell{
					{Col: 1, Row: 1},
					{Col: 2, Row: 1},
					{Col: 3, Row: 1},
				},
				Cost:  2,
				State: &service.NavState{Position: grid.Cell{Col: 1, Row: 1}},
			}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions/abcd/path", map[string]int{"col": 3, "row": 1})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var result service.PathResult
	decodeBody(t, rec, &result)
	if !result.Success {
		t.Error("expected success=true")
	}
	if result.Goal != (grid.Cell{Col: 3, Row: 1}) {
		t.Errorf("expected goal (3,1), got %+v", result.Goal)
	}
	if len(result.Path) != 3 {
		t.Errorf("expected path length 3, got %d", len(result.Path))
	}
}

func TestRequestPath_Unreachable(t *testing.T) {
	mock := &MockNavService{
		RequestPathFunc: func(ctx context.Context, sessionID string, goal grid.Cell) (*service.PathResult, error) {
			return &service.PathResult{
				Success: false,
				Reason:  "unreachable",
				Goal:    goal,
				State:   &service.NavState{},
			}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions/abcd/path", map[string]int{"col": 9, "row": 9})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	// Failed pathfinding is still a successful HTTP exchange
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var result service.PathResult
	decodeBody(t, rec, &result)
	if result.Success {
		t.Error("expected success=false")
	}
	if result.Reason != "unreachable" {
		t.Errorf("expected reason 'unreachable', got %q", result.Reason)
	}
}

func TestRequestPath_InvalidBody(t *testing.T) {
	server := setupTestServer(&MockNavService{})

	req := httptest.NewRequest("POST", "/api/sessions/abcd/path", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPlaceObstacle(t *testing.T) {
	mock := &MockNavService{
		PlaceObstacleFunc: func(ctx context.Context, sessionID string, cell grid.Cell) (*service.ObstacleResult, error) {
			return &service.ObstacleResult{
				Cell:        cell,
				Applied:     true,
				Interrupted: true,
				State:       &service.NavState{},
			}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions/abcd/obstacle", map[string]int{"col": 2, "row": 2})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var result service.ObstacleResult
	decodeBody(t, rec, &result)
	if !result.Applied {
		t.Error("expected applied=true")
	}
	if !result.Interrupted {
		t.Error("expected interrupted=true")
	}
}

func TestAdvance(t *testing.T) {
	mock := &MockNavService{
		AdvanceFunc: func(ctx context.Context, sessionID string) (*service.AdvanceResult, error) {
			return &service.AdvanceResult{
				Position: grid.Cell{Col: 2, Row: 1},
				Moving:   true,
				State:    &service.NavState{},
			}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions/abcd/advance", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var result service.AdvanceResult
	decodeBody(t, rec, &result)
	if result.Position != (grid.Cell{Col: 2, Row: 1}) {
		t.Errorf("expected position (2,1), got %+v", result.Position)
	}
	if !result.Moving {
		t.Error("expected moving=true")
	}
}

func TestReset(t *testing.T) {
	mock := &MockNavService{
		ResetFunc: func(ctx context.Context, sessionID string) (*service.NavState, error) {
			return &service.NavState{Position: grid.Cell{Col: 1, Row: 1}}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("POST", "/api/sessions/abcd/reset", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Message string            `json:"message"`
		State   *service.NavState `json:"state"`
	}
	decodeBody(t, rec, &resp)
	if resp.State == nil {
		t.Fatal("expected state in response")
	}
	if resp.State.Position != (grid.Cell{Col: 1, Row: 1}) {
		t.Errorf("expected position (1,1), got %+v", resp.State.Position)
	}
}

func TestGetHistory_QueryParams(t *testing.T) {
	var gotOpts service.HistoryOptions
	mock := &MockNavService{
		GetRequestHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			gotOpts = opts
			return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("GET", "/api/sessions/abcd/history?page=3&limit=5&order=asc", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if gotOpts.Page != 3 || gotOpts.Limit != 5 || gotOpts.Order != "asc" {
		t.Errorf("expected page=3 limit=5 order=asc, got %+v", gotOpts)
	}
}

func TestGetHistory_Defaults(t *testing.T) {
	var gotOpts service.HistoryOptions
	mock := &MockNavService{
		GetRequestHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			gotOpts = opts
			return &service.HistoryResponse{}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("GET", "/api/sessions/abcd/history", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if gotOpts.Page != 1 || gotOpts.Limit != 20 || gotOpts.Order != "desc" {
		t.Errorf("expected defaults page=1 limit=20 order=desc, got %+v", gotOpts)
	}
}

func TestListMaps(t *testing.T) {
	mock := &MockNavService{
		ListMapsFunc: func(ctx context.Context) ([]*service.MapInfo, error) {
			return []*service.MapInfo{
				{MapID: "courtyard", Name: "Courtyard", Width: 10, Height: 8},
				{MapID: "maze", Name: "Maze", Width: 16, Height: 16},
			}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("GET", "/api/maps", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var maps []*service.MapInfo
	decodeBody(t, rec, &maps)
	if len(maps) != 2 {
		t.Fatalf("expected 2 maps, got %d", len(maps))
	}
	if maps[0].MapID != "courtyard" {
		t.Errorf("expected first map 'courtyard', got %q", maps[0].MapID)
	}
}

func TestGetMap_StripsExtension(t *testing.T) {
	var gotName string
	mock := &MockNavService{
		LoadMapFunc: func(ctx context.Context, mapName string) (*grid.MapConfig, error) {
			gotName = mapName
			return &grid.MapConfig{Name: mapName}, nil
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("GET", "/api/maps/maze.json", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if gotName != "maze" {
		t.Errorf("expected extension stripped, got %q", gotName)
	}
}

func TestCreateMap_RequiresName(t *testing.T) {
	server := setupTestServer(&MockNavService{})

	req := makeRequest("POST", "/api/maps", &grid.MapConfig{Width: 5, Height: 5})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCreateMap(t *testing.T) {
	var savedName string
	mock := &MockNavService{
		SaveMapFunc: func(ctx context.Context, mapName string, cfg *grid.MapConfig) error {
			savedName = mapName
			return nil
		},
	}
	server := setupTestServer(mock)

	cfg := &grid.MapConfig{
		Name:   "custom",
		Width:  4,
		Height: 4,
		Layers: map[string][]string{"ground": {"gggg", "gggg", "gggg", "gggg"}},
	}
	req := makeRequest("POST", "/api/maps", cfg)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if savedName != "custom" {
		t.Errorf("expected map 'custom' saved, got %q", savedName)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockNavService{})

	req := makeRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp["status"])
	}
}

func TestWebSocket_RequiresSessionParam(t *testing.T) {
	server := setupTestServer(&MockNavService{})

	req := makeRequest("GET", "/ws", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestWebSocket_UnknownSession(t *testing.T) {
	mock := &MockNavService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, fmt.Errorf("session not found")
		},
	}
	server := setupTestServer(mock)

	req := makeRequest("GET", "/ws?session=zzzz", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
