// Package spatial provides bounding-box indexes used to prune candidate
// pairs before exact geometry runs.
package spatial

import (
	"errors"
	"fmt"
	"strings"

	"pcb-netlist/pkg/geometry"
)

// ErrUnknownKind is returned by ParseKind for an unrecognised index name.
var ErrUnknownKind = errors.New("unknown spatial index")

// Kind selects an index implementation.
type Kind int

const (
	KindRTree Kind = iota // R-tree (default)
	KindGrid              // Uniform hash grid
	KindBrute             // No pruning, every item is a candidate
)

// DefaultCellSize is the grid cell edge used when none is configured.
const DefaultCellSize = 1.0

func (k Kind) String() string {
	switch k {
	case KindRTree:
		return "rtree"
	case KindGrid:
		return "grid"
	case KindBrute:
		return "brute"
	default:
		return "unknown"
	}
}

// ParseKind parses an index name. The empty string selects the R-tree.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rtree", "r-tree":
		return KindRTree, nil
	case "grid":
		return KindGrid, nil
	case "brute", "none":
		return KindBrute, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Index maps integer item IDs to bounding boxes.
//
// Query returns a superset of the items whose boxes overlap the query box,
// where touching boxes count as overlapping. Results may contain items that
// do not overlap, but never miss one that does. Order is unspecified.
type Index interface {
	Insert(id int, box geometry.Rect)
	Query(box geometry.Rect) []int
	Len() int
}

// New creates an empty index of the given kind. cellSize only applies to
// the grid; values <= 0 select DefaultCellSize.
func New(kind Kind, cellSize float64) Index {
	switch kind {
	case KindGrid:
		return NewGrid(cellSize)
	case KindBrute:
		return &Brute{}
	default:
		return NewRTree()
	}
}

// Brute is an index that performs no pruning.
type Brute struct {
	ids []int
}

func (b *Brute) Insert(id int, _ geometry.Rect) {
	b.ids = append(b.ids, id)
}

func (b *Brute) Query(_ geometry.Rect) []int {
	out := make([]int, len(b.ids))
	copy(out, b.ids)
	return out
}

func (b *Brute) Len() int { return len(b.ids) }
