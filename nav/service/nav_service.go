package service

import (
	"context"
	"time"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/mover"
)

// NavService defines all navigation operations exposed to transports.
type NavService interface {
	// Session Management
	CreateSession(ctx context.Context, mapName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Navigation Operations
	RequestPath(ctx context.Context, sessionID string, goal grid.Cell) (*PathResult, error)
	PlaceObstacle(ctx context.Context, sessionID string, cell grid.Cell) (*ObstacleResult, error)
	Advance(ctx context.Context, sessionID string) (*AdvanceResult, error)
	Reset(ctx context.Context, sessionID string) (*NavState, error)

	// State
	GetState(ctx context.Context, sessionID string) (*NavState, error)
	GetRequestHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Maps
	ListMaps(ctx context.Context) ([]*MapInfo, error)
	LoadMap(ctx context.Context, mapName string) (*grid.MapConfig, error)
	SaveMap(ctx context.Context, mapName string, cfg *grid.MapConfig) error
}

// SessionManager defines session storage operations.
type SessionManager interface {
	Create(id, mapName string, cfg *grid.MapConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, mapName string, cfg *grid.MapConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// MapManager handles map configuration loading.
type MapManager interface {
	LoadMap(name string) (*grid.MapConfig, error)
	ListMaps() ([]*MapInfo, error)
	GetDefault() *grid.MapConfig
	SaveMap(name string, cfg *grid.MapConfig) error
}

// Session is one active navigation session: a map, its built grid, and
// the mover navigating it.
type Session struct {
	ID             string
	MapName        string
	Config         *grid.MapConfig
	Grid           *grid.Grid
	Mover          *mover.Mover
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
