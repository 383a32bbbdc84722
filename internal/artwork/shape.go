package artwork

import (
	"fmt"
	"math"

	"pcb-netlist/pkg/geometry"
)

// Shape is the exact planar form of a physical primitive: a core point set
// (one vertex = point, two = segment, three or more = filled ring) grown by
// a disc of Radius.
type Shape struct {
	Core   []geometry.Point2D
	Radius float64
}

// ShapeOf returns the exact shape of a primitive. Airwires have no physical
// extent and report false.
func ShapeOf(g Geom) (Shape, bool) {
	switch v := g.(type) {
	case *Trace:
		return v.Shape(), true
	case *Via:
		return v.Shape(), true
	case *Pad:
		return v.Shape(), true
	case *Polygon:
		return v.Shape(), true
	case *Airwire:
		return Shape{}, false
	default:
		panic(fmt.Sprintf("artwork: unknown geometry %T", g))
	}
}

// ShapeDistance is the gap between two shapes' outer boundaries, negative
// when they overlap by more than touching.
func ShapeDistance(a, b Shape) float64 {
	d := geometry.CoreDistance(a.Core, b.Core)
	if math.IsInf(d, 1) {
		return d
	}
	return d - (a.Radius + b.Radius)
}
