package session

import (
	"errors"
	"testing"
	"time"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/mover"
	"github.com/MHV33/gridnav/nav/service"
)

func newTestSession(t *testing.T, id string) *service.Session {
	t.Helper()
	cfg := testMapConfig()
	g, err := grid.BuildGrid(cfg)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	return &service.Session{
		ID:             id,
		MapName:        "corridor",
		Config:         cfg,
		Grid:           g,
		Mover:          mover.New(g, cfg.StartCell(), cfg.StepDurationValue()),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

func TestFilePersistence_SaveLoad(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir(), mockMapManager{})
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}

	sess := newTestSession(t, "round")
	sess.Mover.RequestPath(grid.Cell{Col: 3, Row: 1})
	sess.Grid.MarkBlocked(grid.Cell{Col: 2, Row: 1})

	if err := fp.Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := fp.Load("round")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ID != "round" || loaded.MapName != "corridor" {
		t.Errorf("Unexpected identity: %q on %q", loaded.ID, loaded.MapName)
	}
	if loaded.Mover.Position() != sess.Mover.Position() {
		t.Errorf("Expected position %+v, got %+v", sess.Mover.Position(), loaded.Mover.Position())
	}
	if loaded.Grid.IsWalkable(grid.Cell{Col: 2, Row: 1}) {
		t.Error("Expected runtime obstacle restored")
	}
	if len(loaded.Mover.History()) != 1 {
		t.Errorf("Expected 1 history record, got %d", len(loaded.Mover.History()))
	}
	if !loaded.CreatedAt.Equal(sess.CreatedAt) {
		t.Errorf("Expected creation time preserved, got %v", loaded.CreatedAt)
	}
}

func TestFilePersistence_SaveNil(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir(), mockMapManager{})
	if err != nil {
		t.Fatal(err)
	}
	if err := fp.Save(nil); err == nil {
		t.Error("Expected error saving nil session")
	}
}

func TestFilePersistence_LoadMissing(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir(), mockMapManager{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fp.Load("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestFilePersistence_Delete(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir(), mockMapManager{})
	if err != nil {
		t.Fatal(err)
	}

	if err := fp.Save(newTestSession(t, "gone")); err != nil {
		t.Fatal(err)
	}
	if err := fp.Delete("gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if fp.Exists("gone") {
		t.Error("Expected session file removed")
	}
	if err := fp.Delete("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestFilePersistence_ListAll(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir(), mockMapManager{})
	if err != nil {
		t.Fatal(err)
	}

	fp.Save(newTestSession(t, "one"))
	fp.Save(newTestSession(t, "two"))

	ids, err := fp.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 session IDs, got %d: %v", len(ids), ids)
	}
}

func TestFilePersistence_DefaultMapName(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir(), mockMapManager{})
	if err != nil {
		t.Fatal(err)
	}

	sess := newTestSession(t, "def")
	sess.MapName = "default"
	if err := fp.Save(sess); err != nil {
		t.Fatal(err)
	}

	loaded, err := fp.Load("def")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Config == nil || loaded.Config.Name != "Corridor" {
		t.Error("Expected the manager's default map config")
	}
}
