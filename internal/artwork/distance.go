package artwork

import (
	"errors"
	"fmt"
	"math"

	"pcb-netlist/pkg/geometry"
)

// ErrMissingFormula is returned when a distance table lacks a formula for
// some pair of geometry kinds.
var ErrMissingFormula = errors.New("missing distance formula")

// distFunc computes the distance between two primitives of known kinds.
type distFunc func(a, b Geom) float64

// pairKey is an unordered kind pair with lo <= hi.
type pairKey struct {
	lo, hi Kind
}

func pair(a, b Kind) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// authored holds exactly one formula per unordered pair of kinds. The first
// argument of each formula is of kind lo, the second of kind hi.
var authored = map[pairKey]distFunc{
	pair(KindTrace, KindTrace):     distTraceTrace,
	pair(KindTrace, KindVia):       distTraceVia,
	pair(KindTrace, KindPad):       distTracePad,
	pair(KindTrace, KindPolygon):   distShapes,
	pair(KindTrace, KindAirwire):   distXAirwire,
	pair(KindVia, KindVia):         distViaVia,
	pair(KindVia, KindPad):         distViaPad,
	pair(KindVia, KindPolygon):     distShapes,
	pair(KindVia, KindAirwire):     distXAirwire,
	pair(KindPad, KindPad):         distPadPad,
	pair(KindPad, KindPolygon):     distShapes,
	pair(KindPad, KindAirwire):     distXAirwire,
	pair(KindPolygon, KindPolygon): distShapes,
	pair(KindPolygon, KindAirwire): distXAirwire,
	pair(KindAirwire, KindAirwire): distAirwireAirwire,
}

type table [NumKinds][NumKinds]distFunc

// buildTable expands the authored formulas into a full ordered dispatch
// table, deriving the reverse direction by argument swap.
func buildTable(formulas map[pairKey]distFunc) (table, error) {
	var t table
	for a := Kind(0); a < NumKinds; a++ {
		for b := a; b < NumKinds; b++ {
			fn, ok := formulas[pairKey{a, b}]
			if !ok || fn == nil {
				return table{}, fmt.Errorf("%w for %s-%s", ErrMissingFormula, a, b)
			}
			t[a][b] = fn
			if a != b {
				t[b][a] = swapped(fn)
			}
		}
	}
	return t, nil
}

func swapped(fn distFunc) distFunc {
	return func(a, b Geom) float64 {
		return fn(b, a)
	}
}

// Engine answers distance queries between any two primitives.
type Engine struct {
	table table
}

// NewEngine builds an engine from the package's distance formulas.
func NewEngine() (*Engine, error) {
	t, err := buildTable(authored)
	if err != nil {
		return nil, err
	}
	return &Engine{table: t}, nil
}

// defaultEngine is built at program start so an incomplete table fails
// loudly before any query runs.
var defaultEngine = mustEngine()

func mustEngine() *Engine {
	e, err := NewEngine()
	if err != nil {
		panic(fmt.Sprintf("artwork: %v", err))
	}
	return e
}

// DefaultEngine returns the shared engine used by the package-level functions.
func DefaultEngine() *Engine {
	return defaultEngine
}

// Distance returns the gap between the outer boundaries of a and b.
// Zero or less means touching or overlapping. Primitives that share no
// layer are infinitely far apart.
func (e *Engine) Distance(a, b Geom) float64 {
	if !LayersReachable(a, b) {
		return math.Inf(1)
	}
	return e.table[a.Kind()][b.Kind()](a, b)
}

// Intersects reports whether a and b touch or overlap.
func (e *Engine) Intersects(a, b Geom) bool {
	return e.Distance(a, b) <= 0
}

// Distance is Engine.Distance on the default engine.
func Distance(a, b Geom) float64 {
	return defaultEngine.Distance(a, b)
}

// Intersects is Engine.Intersects on the default engine.
func Intersects(a, b Geom) bool {
	return defaultEngine.Intersects(a, b)
}

func distTraceTrace(a, b Geom) float64 {
	t1, t2 := a.(*Trace), b.(*Trace)
	d := geometry.SegmentSegmentDistance(t1.P0, t1.P1, t2.P0, t2.P1)
	return d - (t1.halfWidth() + t2.halfWidth())
}

func distTraceVia(a, b Geom) float64 {
	t, v := a.(*Trace), b.(*Via)
	return distPointTrace(v.Center, t) - v.radius()
}

func distTracePad(a, b Geom) float64 {
	t, p := a.(*Trace), b.(*Pad)
	// Degenerate case where the pad is a circle
	if p.IsCircular() {
		return distPointTrace(p.Center, t) - p.width()/2
	}
	return distShapes(t, p)
}

func distViaVia(a, b Geom) float64 {
	v1, v2 := a.(*Via), b.(*Via)
	return v1.Center.Distance(v2.Center) - (v1.radius() + v2.radius())
}

func distViaPad(a, b Geom) float64 {
	v, p := a.(*Via), b.(*Pad)
	if p.IsCircular() {
		return v.Center.Distance(p.Center) - v.radius() - p.width()/2
	}
	return distShapes(v, p)
}

func distPadPad(a, b Geom) float64 {
	p1, p2 := a.(*Pad), b.(*Pad)
	// Fast degenerate case
	if p1.IsCircular() && p2.IsCircular() {
		return p1.Center.Distance(p2.Center) - (p1.width()/2 + p2.width()/2)
	}
	return distShapes(p1, p2)
}

// distShapes is the general path shared by every pair of physical kinds.
func distShapes(a, b Geom) float64 {
	sa, okA := ShapeOf(a)
	sb, okB := ShapeOf(b)
	if !okA || !okB {
		return math.Inf(1)
	}
	return ShapeDistance(sa, sb)
}

// distXAirwire is zero when either airwire endpoint sits inside x on a
// layer x reaches, otherwise infinite.
func distXAirwire(x, w Geom) float64 {
	aw := w.(*Airwire)
	layers := x.Layers()
	if layers.Has(aw.P0Layer) && Contains(x, aw.P0) {
		return 0
	}
	if layers.Has(aw.P1Layer) && Contains(x, aw.P1) {
		return 0
	}
	return math.Inf(1)
}

func distAirwireAirwire(_, _ Geom) float64 {
	return math.Inf(1)
}
