package service

import (
	"time"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/mover"
	"github.com/MHV33/gridnav/nav/planner"
)

// SessionInfo provides information about a navigation session.
type SessionInfo struct {
	ID             string          `json:"id"`
	MapName        string          `json:"map_name"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	State          *NavState       `json:"state"`
	MapConfig      *grid.MapConfig `json:"map_config,omitempty"`
}

// NavState is the transport-facing snapshot of a session.
type NavState struct {
	MapName       string             `json:"map_name"`
	Width         int                `json:"width"`
	Height        int                `json:"height"`
	TileWidth     int                `json:"tile_width"`
	TileHeight    int                `json:"tile_height"`
	Position      grid.Cell          `json:"position"`
	MoverState    mover.State        `json:"mover_state"`
	Blocked       []grid.Cell        `json:"blocked"`
	Waypoints     []planner.Waypoint `json:"waypoints"`
	TotalRequests int                `json:"total_requests"`

	// Layout renders walkability row by row for clients: '#' not
	// walkable, '.' walkable, '@' the mover's cell.
	Layout []string `json:"layout,omitempty"`
}

// PathResult contains the result of a path request.
type PathResult struct {
	Success   bool               `json:"success"`
	Reason    string             `json:"reason"` // found|invalid_endpoint|unreachable|superseded
	Goal      grid.Cell          `json:"goal"`
	Path      []grid.Cell        `json:"path,omitempty"`
	Cost      float64            `json:"cost"`
	Waypoints []planner.Waypoint `json:"waypoints,omitempty"`
	State     *NavState          `json:"state"`
	Message   string             `json:"message,omitempty"`
}

// ObstacleResult contains the result of placing a runtime obstacle.
type ObstacleResult struct {
	Cell        grid.Cell `json:"cell"`
	Applied     bool      `json:"applied"`
	Interrupted bool      `json:"interrupted"`
	State       *NavState `json:"state"`
}

// AdvanceResult reports one consumed waypoint.
type AdvanceResult struct {
	Position grid.Cell `json:"position"`
	Moving   bool      `json:"moving"`
	State    *NavState `json:"state"`
}

// HistoryOptions configures request history retrieval.
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated path request history.
type HistoryResponse struct {
	Requests    []mover.RequestRecord `json:"requests"`
	TotalCount  int                   `json:"total_count"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
	TotalPages  int                   `json:"total_pages"`
	HasNext     bool                  `json:"has_next"`
	HasPrevious bool                  `json:"has_previous"`
}

// MapInfo provides information about an available map.
type MapInfo struct {
	Filename    string `json:"filename"`
	MapID       string `json:"map_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// NavEvent represents an event that occurred in a session.
type NavEvent struct {
	Type      string    `json:"type"` // path_found|path_not_found|obstacle_placed|moved|reset
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Cell      grid.Cell `json:"cell,omitempty"`
}
