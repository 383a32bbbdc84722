package spatial

import (
	"math"

	"pcb-netlist/pkg/geometry"
)

// maxCellsPerBox caps how many cells a single box may be registered in.
// Larger boxes go to an overflow list that every query returns.
const maxCellsPerBox = 4096

// gridEpsilon widens boxes so ones that touch on a cell boundary still
// share a cell after rounding.
const gridEpsilon = 1e-9

type cellKey struct {
	x, y int64
}

// Grid is a uniform hash grid. Each item is registered in every cell its
// box touches.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
	overflow []int
	n        int
}

// NewGrid creates an empty grid. cellSize <= 0 selects DefaultCellSize.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	return &Grid{cellSize: cellSize, cells: make(map[cellKey][]int)}
}

// CellSize returns the grid's cell edge length.
func (g *Grid) CellSize() float64 { return g.cellSize }

// span returns the inclusive cell range covered by box, or ok=false when
// the box is too large or not finite.
func (g *Grid) span(box geometry.Rect) (lo, hi cellKey, ok bool) {
	eps := gridEpsilon * math.Max(1, math.Max(math.Abs(box.X), math.Abs(box.Y)))
	x0 := math.Floor((box.X - eps) / g.cellSize)
	y0 := math.Floor((box.Y - eps) / g.cellSize)
	x1 := math.Floor((box.X + math.Max(0, box.Width) + eps) / g.cellSize)
	y1 := math.Floor((box.Y + math.Max(0, box.Height) + eps) / g.cellSize)
	for _, v := range []float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1<<40 {
			return cellKey{}, cellKey{}, false
		}
	}
	if (x1-x0+1)*(y1-y0+1) > maxCellsPerBox {
		return cellKey{}, cellKey{}, false
	}
	return cellKey{int64(x0), int64(y0)}, cellKey{int64(x1), int64(y1)}, true
}

func (g *Grid) Insert(id int, box geometry.Rect) {
	g.n++
	lo, hi, ok := g.span(box)
	if !ok {
		g.overflow = append(g.overflow, id)
		return
	}
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			k := cellKey{x, y}
			g.cells[k] = append(g.cells[k], id)
		}
	}
}

func (g *Grid) Query(box geometry.Rect) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0, len(g.overflow))
	add := func(id int) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	for _, id := range g.overflow {
		add(id)
	}

	lo, hi, ok := g.span(box)
	if !ok {
		// Query too large to walk cell by cell; visit every occupied cell.
		for _, ids := range g.cells {
			for _, id := range ids {
				add(id)
			}
		}
		return out
	}
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for _, id := range g.cells[cellKey{x, y}] {
				add(id)
			}
		}
	}
	return out
}

func (g *Grid) Len() int { return g.n }
