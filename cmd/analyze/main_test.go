package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/planner"
)

func writeMap(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write map file: %v", err)
	}
	return path
}

const roomMap = `{
	"name": "Room",
	"width": 5,
	"height": 4,
	"layers": {
		"world": [
			"#####",
			"#...#",
			"#...#",
			"#####"
		]
	},
	"layer_fallback": ["world"],
	"legend": {"#": 1},
	"tileset": [{"index": 1, "collides": true}],
	"start": {"col": 1, "row": 1}
}`

func TestLoadMap(t *testing.T) {
	path := writeMap(t, t.TempDir(), "room.json", roomMap)

	cfg, g, err := loadMap(path)
	if err != nil {
		t.Fatalf("loadMap failed: %v", err)
	}

	if cfg.Name != "Room" {
		t.Errorf("Expected name 'Room', got %q", cfg.Name)
	}
	if g.Width() != 5 || g.Height() != 4 {
		t.Errorf("Expected 5x4 grid, got %dx%d", g.Width(), g.Height())
	}
	if !g.IsWalkable(grid.Cell{Col: 1, Row: 1}) {
		t.Error("Expected (1,1) to be walkable")
	}
	if g.IsWalkable(grid.Cell{Col: 0, Row: 0}) {
		t.Error("Expected (0,0) to be blocked")
	}
}

func TestLoadMap_Invalid(t *testing.T) {
	path := writeMap(t, t.TempDir(), "bad.json", `{"name": "Bad", "width": 1, "height": 1}`)

	if _, _, err := loadMap(path); err == nil {
		t.Error("Expected error for invalid map")
	}
}

func TestFarthestReachable(t *testing.T) {
	path := writeMap(t, t.TempDir(), "room.json", roomMap)

	cfg, g, err := loadMap(path)
	if err != nil {
		t.Fatalf("loadMap failed: %v", err)
	}

	far, steps := farthestReachable(g, cfg.StartCell())

	// In the 3x2 open interior starting at (1,1), the opposite corner
	// (3,2) is the only cell 3 steps away.
	if steps != 3 {
		t.Errorf("Expected farthest distance 3, got %d", steps)
	}
	if far != (grid.Cell{Col: 3, Row: 2}) {
		t.Errorf("Expected farthest cell (3,2), got %+v", far)
	}
}

func TestAnalyzeMap(t *testing.T) {
	path := writeMap(t, t.TempDir(), "room.json", roomMap)

	if err := analyzeMap(path); err != nil {
		t.Fatalf("analyzeMap failed: %v", err)
	}
}

func TestAnalyzeMap_MissingFile(t *testing.T) {
	if err := analyzeMap("/non/existent/map.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPathPlanningOnLoadedMap(t *testing.T) {
	path := writeMap(t, t.TempDir(), "room.json", roomMap)

	cfg, g, err := loadMap(path)
	if err != nil {
		t.Fatalf("loadMap failed: %v", err)
	}

	p, err := planner.FindPath(g, cfg.StartCell(), grid.Cell{Col: 3, Row: 2})
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}

	if p.Len() != 4 {
		t.Errorf("Expected 4-cell path, got %d", p.Len())
	}
	if p.Cost != 3 {
		t.Errorf("Expected cost 3, got %.1f", p.Cost)
	}
}
