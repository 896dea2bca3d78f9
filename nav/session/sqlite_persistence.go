package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/mover"
	"github.com/MHV33/gridnav/nav/service"
)

const sessionsTable = "nav_sessions"

// SQLitePersistence implements SessionPersistence backed by a local
// SQLite database. Blocked cells and request history are stored as JSON
// columns; the grid is rebuilt from the map configuration on load.
type SQLitePersistence struct {
	db   *sql.DB
	maps service.MapManager
}

// NewSQLitePersistence opens (or creates) the database at dbPath and
// ensures the sessions table exists.
func NewSQLitePersistence(dbPath string, maps service.MapManager) (*SQLitePersistence, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sp := &SQLitePersistence{db: db, maps: maps}
	if err := sp.createTable(); err != nil {
		db.Close()
		return nil, err
	}

	return sp, nil
}

func (sp *SQLitePersistence) createTable() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS ` + sessionsTable + ` (
		id TEXT PRIMARY KEY,
		map_name TEXT NOT NULL,
		position_col INTEGER NOT NULL,
		position_row INTEGER NOT NULL,
		blocked TEXT NOT NULL,
		history TEXT NOT NULL,
		created_at TEXT NOT NULL,
		last_accessed_at TEXT NOT NULL
	);`

	if _, err := sp.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to execute CREATE TABLE: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}

// Save persists a session as one row, replacing any previous row.
func (sp *SQLitePersistence) Save(sess *service.Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := snapshot(sess)

	blocked, err := json.Marshal(data.Blocked)
	if err != nil {
		return fmt.Errorf("failed to marshal blocked cells: %w", err)
	}
	history, err := json.Marshal(data.History)
	if err != nil {
		return fmt.Errorf("failed to marshal request history: %w", err)
	}

	const upsertSQL = `
	INSERT INTO ` + sessionsTable + ` (id, map_name, position_col, position_row, blocked, history, created_at, last_accessed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		map_name = excluded.map_name,
		position_col = excluded.position_col,
		position_row = excluded.position_row,
		blocked = excluded.blocked,
		history = excluded.history,
		last_accessed_at = excluded.last_accessed_at;`

	_, err = sp.db.Exec(upsertSQL,
		data.ID,
		data.MapName,
		data.Position.Col,
		data.Position.Row,
		string(blocked),
		string(history),
		data.CreatedAt.Format(time.RFC3339Nano),
		data.LastAccessedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", data.ID, err)
	}

	return nil
}

// Load retrieves a session row and rebuilds the live session.
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	const selectSQL = `
	SELECT id, map_name, position_col, position_row, blocked, history, created_at, last_accessed_at
	FROM ` + sessionsTable + ` WHERE id = ? COLLATE NOCASE;`

	var data PersistedSessionData
	var blocked, history, createdAt, lastAccessedAt string

	row := sp.db.QueryRow(selectSQL, id)
	err := row.Scan(&data.ID, &data.MapName, &data.Position.Col, &data.Position.Row, &blocked, &history, &createdAt, &lastAccessedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(blocked), &data.Blocked); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blocked cells: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &data.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request history: %w", err)
	}
	if data.History == nil {
		data.History = []mover.RequestRecord{}
	}
	if data.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if data.LastAccessedAt, err = time.Parse(time.RFC3339Nano, lastAccessedAt); err != nil {
		return nil, fmt.Errorf("failed to parse last_accessed_at: %w", err)
	}

	cfg, err := sp.mapConfig(data.MapName)
	if err != nil {
		return nil, fmt.Errorf("failed to load map '%s': %w", data.MapName, err)
	}

	sess, err := restore(&data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	return sess, nil
}

// Delete removes a session row.
func (sp *SQLitePersistence) Delete(id string) error {
	const deleteSQL = `DELETE FROM ` + sessionsTable + ` WHERE id = ? COLLATE NOCASE;`

	res, err := sp.db.Exec(deleteSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs.
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	const listSQL = `SELECT id FROM ` + sessionsTable + ` ORDER BY created_at;`

	rows, err := sp.db.Query(listSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}

	return ids, nil
}

// Exists checks whether a session row is present.
func (sp *SQLitePersistence) Exists(id string) bool {
	const countSQL = `SELECT COUNT(*) FROM ` + sessionsTable + ` WHERE id = ? COLLATE NOCASE;`

	var count int
	if err := sp.db.QueryRow(countSQL, id).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

func (sp *SQLitePersistence) mapConfig(name string) (*grid.MapConfig, error) {
	if name == "" || name == "default" {
		return sp.maps.GetDefault(), nil
	}
	return sp.maps.LoadMap(name)
}
