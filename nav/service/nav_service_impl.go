package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/mover"
)

// navServiceImpl implements the NavService interface.
type navServiceImpl struct {
	sessions SessionManager
	maps     MapManager
	mu       sync.RWMutex
}

// NewNavService creates a new navigation service instance.
func NewNavService(sessions SessionManager, maps MapManager) NavService {
	return &navServiceImpl{
		sessions: sessions,
		maps:     maps,
	}
}

// CreateSession creates a new navigation session on the named map.
func (s *navServiceImpl) CreateSession(ctx context.Context, mapName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg *grid.MapConfig
	var err error
	if mapName != "" {
		cfg, err = s.maps.LoadMap(mapName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				available, listErr := s.maps.ListMaps()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, m := range available {
						ids = append(ids, m.MapID)
					}
					return nil, fmt.Errorf("map '%s' not found. Available maps: %v", mapName, ids)
				}
			}
			return nil, fmt.Errorf("failed to load map %s: %w", mapName, err)
		}
	} else {
		cfg = s.maps.GetDefault()
		mapName = "default"
	}

	sess, err := s.sessions.Create("", mapName, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information.
func (s *navServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions.
func (s *navServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session.
func (s *navServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// RequestPath computes a path from the session mover's current cell to
// goal and starts waypoint playback on success.
func (s *navServiceImpl) RequestPath(ctx context.Context, sessionID string, goal grid.Cell) (*PathResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	res := sess.Mover.RequestPath(goal)

	result := &PathResult{
		Success: res.Outcome == mover.OutcomeFound,
		Reason:  string(res.Outcome),
		Goal:    goal,
		State:   buildNavState(sess),
	}
	if res.Path != nil {
		result.Path = res.Path.Cells
		result.Cost = res.Path.Cost
		result.Waypoints = res.Waypoints
		result.Message = fmt.Sprintf("Path found: %d cells, total cost %g", res.Path.Len(), res.Path.Cost)
	} else {
		result.Message = fmt.Sprintf("No path to (%d,%d): %s", goal.Col, goal.Row, res.Outcome)
	}

	s.sessions.Save(sessionID)
	return result, nil
}

// PlaceObstacle marks a cell non-walkable for the rest of the session.
func (s *navServiceImpl) PlaceObstacle(ctx context.Context, sessionID string, cell grid.Cell) (*ObstacleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	applied := sess.Grid.InBounds(cell) && sess.Grid.IsWalkable(cell)
	sess.Grid.MarkBlocked(cell)
	interrupted := sess.Mover.Interrupt(cell)

	s.sessions.Save(sessionID)
	return &ObstacleResult{
		Cell:        cell,
		Applied:     applied,
		Interrupted: interrupted,
		State:       buildNavState(sess),
	}, nil
}

// Advance consumes the next waypoint of the session's active path.
func (s *navServiceImpl) Advance(ctx context.Context, sessionID string) (*AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	pos, moving := sess.Mover.Advance()

	s.sessions.Save(sessionID)
	return &AdvanceResult{
		Position: pos,
		Moving:   moving,
		State:    buildNavState(sess),
	}, nil
}

// Reset rebuilds the session grid from its map config, clearing runtime
// obstacles and returning the mover to the start cell. Request history is
// preserved across resets.
func (s *navServiceImpl) Reset(ctx context.Context, sessionID string) (*NavState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	g, err := grid.BuildGrid(sess.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild grid: %w", err)
	}

	history := sess.Mover.History()
	sess.Grid = g
	sess.Mover = mover.New(g, sess.Config.StartCell(), sess.Config.StepDurationValue())
	sess.Mover.RestoreHistory(history)

	s.sessions.Save(sessionID)
	return buildNavState(sess), nil
}

// GetState returns the current navigation state of a session.
func (s *navServiceImpl) GetState(ctx context.Context, sessionID string) (*NavState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return buildNavState(sess), nil
}

// GetRequestHistory returns paginated path request history.
func (s *navServiceImpl) GetRequestHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	records := sess.Mover.History()
	total := len(records)

	if opts.Order == "desc" {
		reversed := make([]mover.RequestRecord, total)
		for i, r := range records {
			reversed[total-1-i] = r
		}
		records = reversed
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 50
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Requests:    records[start:end],
		TotalCount:  total,
		Page:        page,
		PageSize:    limit,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}

// ListMaps returns the available map configurations.
func (s *navServiceImpl) ListMaps(ctx context.Context) ([]*MapInfo, error) {
	return s.maps.ListMaps()
}

// LoadMap loads a map configuration by name.
func (s *navServiceImpl) LoadMap(ctx context.Context, mapName string) (*grid.MapConfig, error) {
	return s.maps.LoadMap(mapName)
}

// SaveMap validates and stores a map configuration.
func (s *navServiceImpl) SaveMap(ctx context.Context, mapName string, cfg *grid.MapConfig) error {
	if err := grid.ValidateMapConfig(cfg); err != nil {
		return err
	}
	return s.maps.SaveMap(mapName, cfg)
}

func (s *navServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		MapName:        sess.MapName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          buildNavState(sess),
		MapConfig:      sess.Config,
	}
}

// buildNavState assembles the transport-facing snapshot of a session.
func buildNavState(sess *Session) *NavState {
	tileW, tileH := sess.Grid.TileSize()
	return &NavState{
		MapName:       sess.MapName,
		Width:         sess.Grid.Width(),
		Height:        sess.Grid.Height(),
		TileWidth:     tileW,
		TileHeight:    tileH,
		Position:      sess.Mover.Position(),
		MoverState:    sess.Mover.State(),
		Blocked:       sess.Grid.BlockedCells(),
		Waypoints:     sess.Mover.Waypoints(),
		TotalRequests: sess.Mover.TotalRequests(),
		Layout:        RenderLayout(sess.Grid, sess.Mover.Position()),
	}
}

// RenderLayout renders grid walkability row by row: '#' for non-walkable
// cells, '.' for walkable ones, '@' for the mover's cell.
func RenderLayout(g *grid.Grid, at grid.Cell) []string {
	rows := make([]string, 0, g.Height())
	var b strings.Builder
	for row := 0; row < g.Height(); row++ {
		b.Reset()
		for col := 0; col < g.Width(); col++ {
			c := grid.Cell{Col: col, Row: row}
			switch {
			case c == at:
				b.WriteByte('@')
			case g.IsWalkable(c):
				b.WriteByte('.')
			default:
				b.WriteByte('#')
			}
		}
		rows = append(rows, b.String())
	}
	return rows
}
