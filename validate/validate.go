// Command validate provides a small CLI that validates map configuration
// files (JSON or YAML) in the ../configs directory. It checks:
//   - File structure and required fields
//   - Layer row consistency and legend coverage
//   - Tileset sanity (no duplicate indices, no negative costs)
//   - Start cell placement on a walkable tile
//   - Connectivity: every walkable cell is reachable from the start cell
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MHV33/gridnav/nav/grid"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateMapFile loads and validates a single map configuration file.
// It performs structural checks via the grid package, then runs a
// reachability analysis from the start cell.
func validateMapFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	cfg, err := grid.LoadMapConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load file: %v", err))
		return result
	}

	cfg.ApplyDefaults()

	if err := grid.ValidateMapConfig(cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	g, err := grid.BuildGrid(cfg)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to build grid: %v", err))
		return result
	}

	walkable := 0
	costly := 0
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			c := grid.Cell{Col: col, Row: row}
			if g.IsWalkable(c) {
				walkable++
				if g.CostOf(c) > grid.DefaultCost {
					costly++
				}
			}
		}
	}

	// Connectivity validation from the start cell
	connectivity := validateConnectivity(g, cfg.StartCell(), walkable)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", cfg.Width, cfg.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Layers: %s", strings.Join(cfg.LayerFallback, " > ")))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Walkable cells: %d", walkable))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Cells with extra cost: %d", costly))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Start: (%d,%d)", cfg.StartCell().Col, cfg.StartCell().Row))
	}

	return result
}

// validateConnectivity flood-fills from the start cell using
// 4-directional movement over walkable cells. Walkable cells the fill
// never reaches can only ever produce unreachable path outcomes, so they
// are reported as a validation failure.
func validateConnectivity(g *grid.Grid, start grid.Cell, walkable int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	visited := make(map[grid.Cell]bool)
	queue := []grid.Cell{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		neighbors := []grid.Cell{
			{Col: current.Col, Row: current.Row - 1},
			{Col: current.Col + 1, Row: current.Row},
			{Col: current.Col, Row: current.Row + 1},
			{Col: current.Col - 1, Row: current.Row},
		}
		for _, n := range neighbors {
			if !visited[n] && g.InBounds(n) && g.IsWalkable(n) {
				queue = append(queue, n)
			}
		}
	}

	unreachable := walkable - len(visited)
	if unreachable > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d/%d walkable cells unreachable from start", unreachable, walkable))

		// List the first few offenders so the map author can find them
		listed := 0
		for row := 0; row < g.Height() && listed < 5; row++ {
			for col := 0; col < g.Width() && listed < 5; col++ {
				c := grid.Cell{Col: col, Row: row}
				if g.IsWalkable(c) && !visited[c] {
					result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: cell (%d,%d)", col, row))
					listed++
				}
			}
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: All %d walkable cells reachable from start", walkable))
	}

	return result
}

// main scans ../configs for map files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	mapDir := "../configs"
	if len(os.Args) > 1 {
		mapDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(mapDir, pattern))
		if err != nil {
			fmt.Printf("Error finding map files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		fmt.Printf("No map files found in %s\n", mapDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateMapFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All maps are valid!")
	} else {
		fmt.Println("❌ Some maps have errors")
		os.Exit(1)
	}
}
