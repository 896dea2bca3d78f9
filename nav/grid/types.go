package grid

// Cell is an integer coordinate pair in tile space. Identity is the
// coordinate itself; there is no separate ID.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// TileDef declares properties for a single tile index. The tileset is a
// sparse accept-list: only exceptional tiles appear in it.
type TileDef struct {
	Index    int     `json:"index"`
	Collides bool    `json:"collides,omitempty"`
	Cost     float64 `json:"cost,omitempty"`
}

const (
	// NoTileChar marks a cell with no tile in a layer's layout rows.
	NoTileChar = '.'

	// Validation constants
	MinGridSize = 2
	MaxGridSize = 256

	// DefaultCost is the traversal cost of a tile with no declared cost.
	DefaultCost = 1.0

	// DefaultTileSize is the tile edge length in world units (pixels).
	DefaultTileSize = 32

	// DefaultStepDurationMS is the fixed playback time per tile.
	DefaultStepDurationMS = 200
)

// MapConfig represents a map definition loaded from JSON or YAML.
type MapConfig struct {
	Name         string              `json:"name" yaml:"name"`
	Description  string              `json:"description" yaml:"description"`
	Width        int                 `json:"width" yaml:"width"`
	Height       int                 `json:"height" yaml:"height"`
	TileWidth    int                 `json:"tile_width" yaml:"tile_width"`
	TileHeight   int                 `json:"tile_height" yaml:"tile_height"`
	StepDuration int                 `json:"step_duration_ms" yaml:"step_duration_ms"`
	Layers       map[string][]string `json:"layers" yaml:"layers"`
	LayerFallback []string           `json:"layer_fallback" yaml:"layer_fallback"`
	Legend       map[string]int      `json:"legend" yaml:"legend"`
	Tileset      []TileDef           `json:"tileset" yaml:"tileset"`
	Start        *Cell               `json:"start,omitempty" yaml:"start,omitempty"`
}

// TileSource resolves a tile index for a cell in a named layer. MapConfig
// implements it; an engine-side tilemap adapter can implement it as well.
type TileSource interface {
	// TileAt returns the tile index at c in the named layer, or ok=false
	// when the layer has no tile there.
	TileAt(layer string, c Cell) (index int, ok bool)
}

// TileAt implements TileSource over the config's layout rows.
func (m *MapConfig) TileAt(layer string, c Cell) (int, bool) {
	rows, exists := m.Layers[layer]
	if !exists {
		return 0, false
	}
	if c.Row < 0 || c.Row >= len(rows) {
		return 0, false
	}
	row := rows[c.Row]
	if c.Col < 0 || c.Col >= len(row) {
		return 0, false
	}
	ch := string(row[c.Col])
	if row[c.Col] == NoTileChar {
		return 0, false
	}
	index, known := m.Legend[ch]
	if !known {
		return 0, false
	}
	return index, true
}

// StartCell returns the configured start position, or the top-left cell
// when none is declared.
func (m *MapConfig) StartCell() Cell {
	if m.Start != nil {
		return *m.Start
	}
	return Cell{Col: 0, Row: 0}
}
