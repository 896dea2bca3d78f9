// Package grid provides the walkability model for gridnav.
//
// The grid package implements:
//   - Tile classification from layered map layouts and sparse tile properties
//   - Per-cell traversal costs with a default of one unit per tile
//   - Runtime obstacle placement via MarkBlocked
//   - Bounds-checked walkability and cost queries
//   - World/tile coordinate conversion
//
// Core Types:
//
// MapConfig defines a map loaded from JSON or YAML files: named layers of
// layout rows, a legend mapping layout characters to tile indices, and a
// sparse tileset listing only the exceptional tiles (colliding tiles and
// tiles with non-default costs). Grid is the immutable-by-convention
// snapshot built from a MapConfig; only MarkBlocked mutates it.
//
// Layer Fallback:
//
// A cell's tile index is resolved by consulting the layers named in
// LayerFallback in order; the first layer holding a tile at the cell wins.
// This makes the "check the ground layer when the main layer is empty"
// behavior an explicit, named policy instead of an implicit layer priority.
//
// Usage:
//
//	cfg, err := grid.LoadMapConfig("configs/courtyard.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g, err := grid.BuildGrid(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g.MarkBlocked(grid.Cell{Col: 3, Row: 4})
//	ok := g.IsWalkable(grid.Cell{Col: 3, Row: 4}) // false
//
// Classification Rule:
//
// A tile index absent from the tileset is walkable at default cost. A tile
// whose tileset entry sets collides is not walkable. Otherwise the tile is
// walkable at the entry's cost, or the default cost when none is declared.
package grid
