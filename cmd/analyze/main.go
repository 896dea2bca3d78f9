// Command analyze prints quick, human-readable heuristics about map
// configuration files. It summarizes dimensions, walkability, tile
// costs, and can plan and render a path between two cells to sanity
// check a map before serving it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/MHV33/gridnav/nav/grid"
	"github.com/MHV33/gridnav/nav/planner"
)

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "inspect map files and dry-run the path planner",
		Commands: []*cli.Command{
			{
				Name:      "maps",
				Usage:     "summarize every map file in a directory",
				ArgsUsage: "[dir]",
				Action:    runMaps,
			},
			{
				Name:      "path",
				Usage:     "plan a path on a map between two cells",
				ArgsUsage: "<map-file>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "from-col", Usage: "start column (defaults to the map's start cell)", Value: -1},
					&cli.IntFlag{Name: "from-row", Usage: "start row (defaults to the map's start cell)", Value: -1},
					&cli.IntFlag{Name: "to-col", Usage: "goal column", Required: true},
					&cli.IntFlag{Name: "to-row", Usage: "goal row", Required: true},
				},
				Action: runPath,
			},
			{
				Name:      "render",
				Usage:     "print a map's walkability grid",
				ArgsUsage: "<map-file>",
				Action:    runRender,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMaps(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().Get(0)
	if dir == "" {
		dir = "configs"
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return fmt.Errorf("no map files found in %s", dir)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeMap(file); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}

	return nil
}

func analyzeMap(path string) error {
	cfg, g, err := loadMap(path)
	if err != nil {
		return err
	}

	walkable := 0
	costly := 0
	totalCost := 0.0
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			c := grid.Cell{Col: col, Row: row}
			if !g.IsWalkable(c) {
				continue
			}
			walkable++
			totalCost += g.CostOf(c)
			if g.CostOf(c) > grid.DefaultCost {
				costly++
			}
		}
	}

	total := g.Width() * g.Height()
	fmt.Printf("Name: %s\n", cfg.Name)
	fmt.Printf("Grid: %d x %d (%d cells)\n", cfg.Width, cfg.Height, total)
	tileW, tileH := g.TileSize()
	fmt.Printf("Tile size: %dx%d px, %v per step\n", tileW, tileH, cfg.StepDurationValue())
	fmt.Printf("Walkable: %d (%.0f%%)\n", walkable, 100*float64(walkable)/float64(total))
	fmt.Printf("Cells with extra cost: %d\n", costly)
	if walkable > 0 {
		fmt.Printf("Mean traversal cost: %.2f (min %.1f)\n", totalCost/float64(walkable), g.MinCost())
	}
	fmt.Printf("Start: (%d,%d)\n", cfg.StartCell().Col, cfg.StartCell().Row)

	// Longest shortest-path from the start, a rough difficulty signal
	far, steps := farthestReachable(g, cfg.StartCell())
	if steps > 0 {
		fmt.Printf("Farthest reachable cell: (%d,%d), %d steps from start\n", far.Col, far.Row, steps)
	}

	return nil
}

// farthestReachable runs a breadth-first sweep from start and returns
// the last cell reached with its hop distance.
func farthestReachable(g *grid.Grid, start grid.Cell) (grid.Cell, int) {
	type entry struct {
		cell  grid.Cell
		depth int
	}

	visited := map[grid.Cell]bool{start: true}
	queue := []entry{{start, 0}}
	last := entry{start, 0}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		last = cur

		neighbors := []grid.Cell{
			{Col: cur.cell.Col, Row: cur.cell.Row - 1},
			{Col: cur.cell.Col + 1, Row: cur.cell.Row},
			{Col: cur.cell.Col, Row: cur.cell.Row + 1},
			{Col: cur.cell.Col - 1, Row: cur.cell.Row},
		}
		for _, n := range neighbors {
			if !visited[n] && g.InBounds(n) && g.IsWalkable(n) {
				visited[n] = true
				queue = append(queue, entry{n, cur.depth + 1})
			}
		}
	}

	return last.cell, last.depth
}

func runPath(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().Get(0)
	if file == "" {
		return fmt.Errorf("map file argument required")
	}

	cfg, g, err := loadMap(file)
	if err != nil {
		return err
	}

	start := cfg.StartCell()
	if cmd.Int("from-col") >= 0 && cmd.Int("from-row") >= 0 {
		start = grid.Cell{Col: int(cmd.Int("from-col")), Row: int(cmd.Int("from-row"))}
	}
	goal := grid.Cell{Col: int(cmd.Int("to-col")), Row: int(cmd.Int("to-row"))}

	path, err := planner.FindPath(g, start, goal)
	if err != nil {
		return fmt.Errorf("no path from (%d,%d) to (%d,%d): %w", start.Col, start.Row, goal.Col, goal.Row, err)
	}

	fmt.Printf("Path: %d cells, cost %.1f\n", path.Len(), path.Cost)
	cells := make([]string, 0, path.Len())
	for _, c := range path.Cells {
		cells = append(cells, fmt.Sprintf("(%d,%d)", c.Col, c.Row))
	}
	fmt.Println("Route: " + strings.Join(cells, " -> "))

	tileW, tileH := g.TileSize()
	waypoints := planner.ToWaypoints(path, tileW, tileH, cfg.StepDurationValue())
	fmt.Printf("Waypoints: %d\n", len(waypoints))
	for i, wp := range waypoints {
		fmt.Printf("  %2d. x=%.0f y=%.0f duration=%v\n", i+1, wp.X, wp.Y, wp.Duration)
	}

	fmt.Println()
	printGrid(g, start, path)
	return nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().Get(0)
	if file == "" {
		return fmt.Errorf("map file argument required")
	}

	cfg, g, err := loadMap(file)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%dx%d)\n\n", cfg.Name, cfg.Width, cfg.Height)
	printGrid(g, cfg.StartCell(), nil)
	return nil
}

// printGrid renders walkability with an optional path overlay: '#'
// blocked, '.' walkable, '*' on the path, '@' the start cell.
func printGrid(g *grid.Grid, start grid.Cell, path *planner.Path) {
	onPath := make(map[grid.Cell]bool)
	if path != nil {
		for _, c := range path.Cells {
			onPath[c] = true
		}
	}

	for row := 0; row < g.Height(); row++ {
		var b strings.Builder
		for col := 0; col < g.Width(); col++ {
			c := grid.Cell{Col: col, Row: row}
			switch {
			case c == start:
				b.WriteByte('@')
			case onPath[c]:
				b.WriteByte('*')
			case g.IsWalkable(c):
				b.WriteByte('.')
			default:
				b.WriteByte('#')
			}
		}
		fmt.Println(b.String())
	}
}

func loadMap(path string) (*grid.MapConfig, *grid.Grid, error) {
	cfg, err := grid.LoadMapConfig(path)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyDefaults()
	if err := grid.ValidateMapConfig(cfg); err != nil {
		return nil, nil, err
	}
	g, err := grid.BuildGrid(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, g, nil
}
