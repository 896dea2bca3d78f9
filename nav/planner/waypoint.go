package planner

import "time"

// Waypoint is a world-space motion target with a playback duration.
type Waypoint struct {
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Duration time.Duration `json:"duration"`
}

// ToWaypoints translates a path into an ordered waypoint sequence for an
// external chained-motion player. The start cell is skipped since the
// mover is already there, so an N-cell path yields N-1 waypoints. Targets
// are cell top-left corners in world units; every segment plays for the
// same fixed per-tile duration regardless of cell cost.
func ToWaypoints(p *Path, tileW, tileH int, perTile time.Duration) []Waypoint {
	if p == nil || len(p.Cells) < 2 {
		return []Waypoint{}
	}
	wps := make([]Waypoint, 0, len(p.Cells)-1)
	for _, c := range p.Cells[1:] {
		wps = append(wps, Waypoint{
			X:        float64(c.Col * tileW),
			Y:        float64(c.Row * tileH),
			Duration: perTile,
		})
	}
	return wps
}
