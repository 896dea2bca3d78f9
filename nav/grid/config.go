package grid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ValidateMapConfig validates a map configuration for correctness.
func ValidateMapConfig(cfg *MapConfig) error {
	if cfg == nil {
		return fmt.Errorf("map validation: config is nil")
	}
	if cfg.Name == "" {
		return fmt.Errorf("map validation: name is required")
	}

	if cfg.Width < MinGridSize || cfg.Width > MaxGridSize {
		return fmt.Errorf("map validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, cfg.Width)
	}
	if cfg.Height < MinGridSize || cfg.Height > MaxGridSize {
		return fmt.Errorf("map validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, cfg.Height)
	}
	if cfg.TileWidth < 0 || cfg.TileHeight < 0 {
		return fmt.Errorf("map validation: tile dimensions must not be negative")
	}
	if cfg.StepDuration < 0 {
		return fmt.Errorf("map validation: step_duration_ms must not be negative")
	}

	if len(cfg.Layers) == 0 {
		return fmt.Errorf("map validation: at least one layer is required")
	}
	if len(cfg.LayerFallback) == 0 {
		return fmt.Errorf("map validation: layer_fallback must name the layer resolution order")
	}
	for _, name := range cfg.LayerFallback {
		if _, ok := cfg.Layers[name]; !ok {
			return fmt.Errorf("map validation: layer_fallback names unknown layer %q", name)
		}
	}

	for name, rows := range cfg.Layers {
		if len(rows) != cfg.Height {
			return fmt.Errorf("map validation: layer %q must have %d rows to match height, got %d", name, cfg.Height, len(rows))
		}
		for i, row := range rows {
			if len(row) != cfg.Width {
				return fmt.Errorf("map validation: layer %q row %d must have %d characters to match width, got %d", name, i+1, cfg.Width, len(row))
			}
			// Layouts are indexed by byte, so one cell is one ASCII byte.
			for j := 0; j < len(row); j++ {
				ch := row[j]
				if ch >= utf8.RuneSelf {
					return fmt.Errorf("map validation: layer %q row %d, col %d has a non-ASCII character; layouts must be ASCII", name, i+1, j+1)
				}
				if ch == NoTileChar {
					continue
				}
				if _, ok := cfg.Legend[string(ch)]; !ok {
					return fmt.Errorf("map validation: layer %q has character %q at row %d, col %d not present in legend", name, string(ch), i+1, j+1)
				}
			}
		}
	}

	for ch, index := range cfg.Legend {
		if len(ch) != 1 {
			return fmt.Errorf("map validation: legend key %q must be a single character", ch)
		}
		if ch == string(NoTileChar) {
			return fmt.Errorf("map validation: legend must not redefine the no-tile character %q", string(NoTileChar))
		}
		if index < 0 {
			return fmt.Errorf("map validation: legend[%q] must map to a non-negative tile index, got %d", ch, index)
		}
	}

	seen := make(map[int]bool, len(cfg.Tileset))
	for _, def := range cfg.Tileset {
		if def.Index < 0 {
			return fmt.Errorf("map validation: tileset index must not be negative, got %d", def.Index)
		}
		if seen[def.Index] {
			return fmt.Errorf("map validation: tileset declares index %d more than once", def.Index)
		}
		seen[def.Index] = true
		if def.Cost < 0 {
			return fmt.Errorf("map validation: tileset index %d has negative cost %g", def.Index, def.Cost)
		}
	}

	if cfg.Start != nil {
		if cfg.Start.Col < 0 || cfg.Start.Col >= cfg.Width || cfg.Start.Row < 0 || cfg.Start.Row >= cfg.Height {
			return fmt.Errorf("map validation: start (%d,%d) is out of bounds", cfg.Start.Col, cfg.Start.Row)
		}
	}

	// Build once to confirm the map has somewhere to stand.
	g := Build(cfg, cfg.Tileset, cfg.Width, cfg.Height, cfg.LayerFallback, cfg.TileWidth, cfg.TileHeight)
	anyWalkable := false
	for row := 0; row < cfg.Height && !anyWalkable; row++ {
		for col := 0; col < cfg.Width; col++ {
			if g.IsWalkable(Cell{Col: col, Row: row}) {
				anyWalkable = true
				break
			}
		}
	}
	if !anyWalkable {
		return fmt.Errorf("map validation: map has no walkable cells")
	}
	if cfg.Start != nil && !g.IsWalkable(*cfg.Start) {
		return fmt.Errorf("map validation: start (%d,%d) is not walkable", cfg.Start.Col, cfg.Start.Row)
	}

	return nil
}

// ApplyDefaults fills zero-valued optional fields in place.
func (m *MapConfig) ApplyDefaults() {
	if m.TileWidth == 0 {
		m.TileWidth = DefaultTileSize
	}
	if m.TileHeight == 0 {
		m.TileHeight = DefaultTileSize
	}
	if m.StepDuration == 0 {
		m.StepDuration = DefaultStepDurationMS
	}
	if len(m.LayerFallback) == 0 && len(m.Layers) == 1 {
		for name := range m.Layers {
			m.LayerFallback = []string{name}
		}
	}
}

// StepDurationValue returns the per-tile playback duration.
func (m *MapConfig) StepDurationValue() time.Duration {
	if m.StepDuration <= 0 {
		return DefaultStepDurationMS * time.Millisecond
	}
	return time.Duration(m.StepDuration) * time.Millisecond
}

// LoadMapConfig loads a map configuration from a JSON or YAML file.
func LoadMapConfig(filename string) (*MapConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg MapConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse map file '%s': %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse map file '%s': %w", filename, err)
		}
	}

	cfg.ApplyDefaults()

	if err := ValidateMapConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultMapConfig returns the built-in courtyard map used when no map
// directory is configured.
func DefaultMapConfig() *MapConfig {
	cfg := &MapConfig{
		Name:        "Courtyard",
		Description: "Built-in walled courtyard with a sand patch and a pond",
		Width:       10,
		Height:      8,
		Layers: map[string][]string{
			"world": {
				"##########",
				"#....~~..#",
				"#..#.~~..#",
				"#..#.....#",
				"#..####..#",
				"#........#",
				"#..ss....#",
				"##########",
			},
			"ground": {
				"gggggggggg",
				"gggggggggg",
				"gggggggggg",
				"gggggggggg",
				"gggggggggg",
				"gggggggggg",
				"gggggggggg",
				"gggggggggg",
			},
		},
		LayerFallback: []string{"world", "ground"},
		Legend: map[string]int{
			"g": 0,
			"#": 1,
			"~": 2,
			"s": 3,
		},
		Tileset: []TileDef{
			{Index: 1, Collides: true},
			{Index: 2, Collides: true},
			{Index: 3, Cost: 2},
		},
		Start: &Cell{Col: 1, Row: 1},
	}
	cfg.ApplyDefaults()
	return cfg
}
