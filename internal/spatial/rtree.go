package spatial

import (
	"log"
	"math"

	"github.com/dhconnelly/rtreego"

	"pcb-netlist/pkg/geometry"
)

// rtreeEpsilon pads every box. rtreego rejects zero-length sides and treats
// boxes that only touch as disjoint, so both stored and query boxes are
// grown slightly to keep queries inclusive.
const rtreeEpsilon = 1e-9

// RTree is an Index backed by a 2-D rtreego tree.
type RTree struct {
	tree *rtreego.Rtree
	n    int
}

// item is the rtreego.Spatial stored in the tree.
type item struct {
	id  int
	box rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect { return it.box }

// NewRTree creates an empty R-tree index.
func NewRTree() *RTree {
	return &RTree{tree: rtreego.NewTree(2, 25, 50)}
}

// toRect converts a board rectangle to an rtreego rectangle padded by eps
// on every side, scaled with the coordinate magnitude.
func toRect(r geometry.Rect) (rtreego.Rect, bool) {
	if math.IsNaN(r.X) || math.IsNaN(r.Y) || math.IsNaN(r.Width) || math.IsNaN(r.Height) ||
		math.IsInf(r.X, 0) || math.IsInf(r.Y, 0) || math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0) {
		return rtreego.Rect{}, false
	}
	scale := math.Max(1, math.Max(math.Abs(r.X), math.Abs(r.Y)))
	eps := rtreeEpsilon * scale
	w := math.Max(0, r.Width) + 2*eps
	h := math.Max(0, r.Height) + 2*eps
	rect, err := rtreego.NewRect(rtreego.Point{r.X - eps, r.Y - eps}, []float64{w, h})
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}

// Insert adds an item. Boxes that cannot be represented (NaN or infinite
// coordinates) are logged and skipped.
func (t *RTree) Insert(id int, box geometry.Rect) {
	rect, ok := toRect(box)
	if !ok {
		log.Printf("Spatial: skipping item %d with unrepresentable bounds %+v", id, box)
		return
	}
	t.tree.Insert(&item{id: id, box: rect})
	t.n++
}

func (t *RTree) Query(box geometry.Rect) []int {
	rect, ok := toRect(box)
	if !ok {
		return nil
	}
	hits := t.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*item).id)
	}
	return out
}

func (t *RTree) Len() int { return t.n }
