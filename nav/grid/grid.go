package grid

// Grid holds the walkability and cost attributes for every cell of a map.
// It is built once per map load and mutated only through MarkBlocked.
type Grid struct {
	cols, rows int
	walkable   []bool
	cost       []float64
	tileW      int
	tileH      int
	minCost    float64
	blocked    []Cell
}

// Build derives a Grid from a tile source and a sparse tileset. For every
// cell the tile index is resolved through the fallback layer order; the
// first layer holding a tile wins. Cells with no tile in any layer carry
// no declared properties and default to walkable at DefaultCost.
func Build(src TileSource, tileset []TileDef, cols, rows int, fallback []string, tileW, tileH int) *Grid {
	if tileW <= 0 {
		tileW = DefaultTileSize
	}
	if tileH <= 0 {
		tileH = DefaultTileSize
	}

	props := make(map[int]TileDef, len(tileset))
	for _, def := range tileset {
		props[def.Index] = def
	}

	g := &Grid{
		cols:     cols,
		rows:     rows,
		walkable: make([]bool, cols*rows),
		cost:     make([]float64, cols*rows),
		tileW:    tileW,
		tileH:    tileH,
		minCost:  DefaultCost,
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := Cell{Col: col, Row: row}
			idx := g.index(col, row)

			tile, found := 0, false
			for _, layer := range fallback {
				if t, ok := src.TileAt(layer, c); ok {
					tile, found = t, true
					break
				}
			}

			if !found {
				g.walkable[idx] = true
				g.cost[idx] = DefaultCost
				continue
			}

			def, declared := props[tile]
			switch {
			case !declared:
				g.walkable[idx] = true
				g.cost[idx] = DefaultCost
			case def.Collides:
				g.walkable[idx] = false
			default:
				g.walkable[idx] = true
				if def.Cost > 0 {
					g.cost[idx] = def.Cost
				} else {
					g.cost[idx] = DefaultCost
				}
			}
		}
	}

	for i, ok := range g.walkable {
		if ok && g.cost[i] < g.minCost {
			g.minCost = g.cost[i]
		}
	}

	return g
}

// BuildGrid builds a Grid directly from a map config.
func BuildGrid(cfg *MapConfig) (*Grid, error) {
	if err := ValidateMapConfig(cfg); err != nil {
		return nil, err
	}
	return Build(cfg, cfg.Tileset, cfg.Width, cfg.Height, cfg.LayerFallback, cfg.TileWidth, cfg.TileHeight), nil
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.cols }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.rows }

// TileSize returns the tile dimensions in world units.
func (g *Grid) TileSize() (w, h int) { return g.tileW, g.tileH }

func (g *Grid) index(col, row int) int {
	return row*g.cols + col
}

// InBounds reports whether c lies inside the grid extents.
func (g *Grid) InBounds(c Cell) bool {
	return g != nil && c.Col >= 0 && c.Row >= 0 && c.Col < g.cols && c.Row < g.rows
}

// IsWalkable reports whether c is traversable. Out-of-bounds cells are
// not walkable.
func (g *Grid) IsWalkable(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.walkable[g.index(c.Col, c.Row)]
}

// CostOf returns the traversal cost of entering c. Out-of-bounds or
// non-walkable cells report zero.
func (g *Grid) CostOf(c Cell) float64 {
	if !g.IsWalkable(c) {
		return 0
	}
	return g.cost[g.index(c.Col, c.Row)]
}

// MinCost returns the lowest traversal cost of any walkable cell at build
// time. Used as an admissible heuristic scale by the planner.
func (g *Grid) MinCost() float64 {
	if g == nil || g.minCost <= 0 {
		return DefaultCost
	}
	return g.minCost
}

// MarkBlocked marks c non-walkable going forward. Idempotent; a no-op for
// out-of-bounds cells. Blocked cells are never unblocked.
func (g *Grid) MarkBlocked(c Cell) {
	if !g.InBounds(c) {
		return
	}
	idx := g.index(c.Col, c.Row)
	if !g.walkable[idx] {
		return
	}
	g.walkable[idx] = false
	g.blocked = append(g.blocked, c)
}

// BlockedCells returns the cells blocked at runtime, in placement order.
func (g *Grid) BlockedCells() []Cell {
	out := make([]Cell, len(g.blocked))
	copy(out, g.blocked)
	return out
}

// Clone returns an independent snapshot of the grid. Searches run against
// a clone so that mutations issued after a request was started are not
// reflected in the in-flight search.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	cp := &Grid{
		cols:    g.cols,
		rows:    g.rows,
		tileW:   g.tileW,
		tileH:   g.tileH,
		minCost: g.minCost,
	}
	cp.walkable = make([]bool, len(g.walkable))
	copy(cp.walkable, g.walkable)
	cp.cost = make([]float64, len(g.cost))
	copy(cp.cost, g.cost)
	cp.blocked = make([]Cell, len(g.blocked))
	copy(cp.blocked, g.blocked)
	return cp
}

// WorldToCell converts a world position to the cell containing it.
// ok is false when the position lies outside the map.
func (g *Grid) WorldToCell(x, y float64) (Cell, bool) {
	if g == nil || x < 0 || y < 0 {
		return Cell{}, false
	}
	c := Cell{Col: int(x) / g.tileW, Row: int(y) / g.tileH}
	if !g.InBounds(c) {
		return Cell{}, false
	}
	return c, true
}

// CellToWorld converts a cell to its top-left corner in world units.
func (g *Grid) CellToWorld(c Cell) (x, y float64) {
	return float64(c.Col * g.tileW), float64(c.Row * g.tileH)
}
