package planner

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"github.com/MHV33/gridnav/nav/grid"
)

var (
	// ErrNoPath is the class of all not-found results; match with errors.Is.
	ErrNoPath = errors.New("no walkable path")

	// ErrInvalidEndpoint reports a start or goal that is out of bounds or
	// not walkable. Endpoints are never snapped to a nearby walkable cell.
	ErrInvalidEndpoint = fmt.Errorf("%w: start or goal is out of bounds or not walkable", ErrNoPath)

	// ErrUnreachable reports walkable endpoints with no route between them.
	ErrUnreachable = fmt.Errorf("%w: goal is unreachable from start", ErrNoPath)

	// ErrCanceled reports a search aborted before completion.
	ErrCanceled = errors.New("path search canceled")
)

// Path is an ordered cell sequence from start to goal. Consecutive cells
// are 4-adjacent. A path from a cell to itself has one cell and zero cost.
type Path struct {
	Cells []grid.Cell `json:"cells"`
	Cost  float64     `json:"cost"`
}

// Start returns the first cell of the path.
func (p *Path) Start() grid.Cell { return p.Cells[0] }

// Goal returns the last cell of the path.
func (p *Path) Goal() grid.Cell { return p.Cells[len(p.Cells)-1] }

// Len returns the number of cells in the path.
func (p *Path) Len() int { return len(p.Cells) }

// Fixed expansion order: north, east, south, west.
var neighborOffsets = [4]struct{ dc, dr int }{
	{0, -1},
	{1, 0},
	{0, 1},
	{-1, 0},
}

type pathNode struct {
	cell   grid.Cell
	g      float64
	f      float64
	seq    int
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	// Equal priority resolves to the earlier insertion, keeping expansion
	// order reproducible.
	return pq[i].seq < pq[j].seq
}

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	n := len(*pq)
	item := x.(*pathNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

func heuristic(a, b grid.Cell, scale float64) float64 {
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	return float64(dc+dr) * scale
}

// FindPath computes the minimum-cost walkable path from start to goal.
// It returns ErrInvalidEndpoint when either endpoint is out of bounds or
// not walkable, and ErrUnreachable when no route connects them.
func FindPath(g *grid.Grid, start, goal grid.Cell) (*Path, error) {
	return findPath(context.Background(), g, start, goal)
}

func findPath(ctx context.Context, g *grid.Grid, start, goal grid.Cell) (*Path, error) {
	if g == nil {
		return nil, ErrInvalidEndpoint
	}
	if !g.IsWalkable(start) || !g.IsWalkable(goal) {
		return nil, ErrInvalidEndpoint
	}
	if start == goal {
		return &Path{Cells: []grid.Cell{start}, Cost: 0}, nil
	}

	// Manhattan distance scaled by the cheapest cell keeps the heuristic
	// admissible on non-uniform cost maps.
	scale := g.MinCost()

	cols := g.Width()
	indexOf := func(c grid.Cell) int { return c.Row*cols + c.Col }

	open := &pathQueue{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &pathNode{cell: start, g: 0, f: heuristic(start, goal, scale), seq: seq})

	gScore := map[int]float64{indexOf(start): 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, ErrCanceled
		}

		current := heap.Pop(open).(*pathNode)
		currIdx := indexOf(current.cell)
		if _, seen := closed[currIdx]; seen {
			continue
		}
		closed[currIdx] = struct{}{}

		if current.cell == goal {
			return &Path{Cells: reconstruct(current), Cost: current.g}, nil
		}

		for _, delta := range neighborOffsets {
			next := grid.Cell{Col: current.cell.Col + delta.dc, Row: current.cell.Row + delta.dr}
			if !g.IsWalkable(next) {
				continue
			}
			idx := indexOf(next)
			if _, seen := closed[idx]; seen {
				continue
			}
			tentative := current.g + g.CostOf(next)
			if prev, ok := gScore[idx]; ok && tentative >= prev {
				continue
			}
			gScore[idx] = tentative
			seq++
			heap.Push(open, &pathNode{
				cell:   next,
				g:      tentative,
				f:      tentative + heuristic(next, goal, scale),
				seq:    seq,
				parent: current,
			})
		}
	}

	return nil, ErrUnreachable
}

func reconstruct(end *pathNode) []grid.Cell {
	n := 0
	for node := end; node != nil; node = node.parent {
		n++
	}
	cells := make([]grid.Cell, n)
	for node := end; node != nil; node = node.parent {
		n--
		cells[n] = node.cell
	}
	return cells
}
