package artwork

import (
	"fmt"
	"math"

	"pcb-netlist/pkg/geometry"
)

// Contains reports whether pt lies inside the primitive. The bounding box
// is checked first; exact geometry only runs on a box hit.
func Contains(g Geom, pt geometry.Point2D) bool {
	if !g.Bounds().Contains(pt) {
		return false
	}

	switch v := g.(type) {
	case *Trace:
		return containsTrace(v, pt)
	case *Via:
		return containsVia(v, pt)
	case *Pad:
		return containsPad(v, pt)
	case *Polygon:
		return geometry.PointInOrOnPolygon(pt, v.Vertices)
	case *Airwire:
		return geometry.PointSegmentDistance(pt, v.P0, v.P1) <= 0
	default:
		panic(fmt.Sprintf("artwork: unknown geometry %T", g))
	}
}

// distPointTrace is the signed gap from pt to the trace's outer edge.
func distPointTrace(pt geometry.Point2D, t *Trace) float64 {
	return geometry.PointSegmentDistance(pt, t.P0, t.P1) - t.halfWidth()
}

func containsTrace(t *Trace, pt geometry.Point2D) bool {
	return distPointTrace(pt, t) < 0
}

func containsVia(v *Via, pt geometry.Point2D) bool {
	r := v.radius()
	return pt.Distance2(v.Center) <= r*r
}

func containsPad(p *Pad, pt geometry.Point2D) bool {
	local := p.WorldToPad(pt)

	switch {
	case p.Outline == PadRect:
		return math.Abs(local.X) <= p.width()/2 && math.Abs(local.Y) <= p.length()/2
	case p.IsCircular():
		return local.Mag() < p.width()/2
	default:
		a, b, thickness := p.localTraceRepr()
		return geometry.PointSegmentDistance(local, a, b) < thickness/2
	}
}
