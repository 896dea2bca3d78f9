package session

import (
	"time"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/mover"
	"github.com/MHV33/gridnav/nav/service"
)

// SessionPersistence defines the interface for persisting sessions.
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the serialized form of a session. Only state
// that cannot be rebuilt from the map configuration is stored.
type PersistedSessionData struct {
	ID             string                `json:"id"`
	MapName        string                `json:"map_name"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	Position       grid.Cell             `json:"position"`
	Blocked        []grid.Cell           `json:"blocked"`
	History        []mover.RequestRecord `json:"history"`
}

// snapshot captures the persistable parts of a session.
func snapshot(sess *service.Session) PersistedSessionData {
	return PersistedSessionData{
		ID:             sess.ID,
		MapName:        sess.MapName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Position:       sess.Mover.Position(),
		Blocked:        sess.Grid.BlockedCells(),
		History:        sess.Mover.History(),
	}
}

// restore rebuilds a live session from persisted data and its map config.
func restore(data *PersistedSessionData, cfg *grid.MapConfig) (*service.Session, error) {
	g, err := grid.BuildGrid(cfg)
	if err != nil {
		return nil, err
	}
	for _, c := range data.Blocked {
		g.MarkBlocked(c)
	}

	m := mover.New(g, cfg.StartCell(), cfg.StepDurationValue())
	m.SetPosition(data.Position)
	m.RestoreHistory(data.History)

	return &service.Session{
		ID:             data.ID,
		MapName:        data.MapName,
		Config:         cfg,
		Grid:           g,
		Mover:          m,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
