// Package artwork defines the copper geometry primitives traced over a board
// and the exact distance, containment and intersection tests between them.
package artwork

import (
	"fmt"

	"pcb-netlist/pkg/geometry"
)

// Kind identifies which of the closed set of geometry variants a primitive is.
type Kind int

const (
	KindTrace   Kind = iota // Copper trace segment
	KindVia                 // Plated via spanning a via pair
	KindPad                 // Component pad
	KindPolygon             // Copper pour / zone
	KindAirwire             // User-asserted virtual connection

	// NumKinds is the number of geometry variants.
	NumKinds
)

func (k Kind) String() string {
	switch k {
	case KindTrace:
		return "Trace"
	case KindVia:
		return "Via"
	case KindPad:
		return "Pad"
	case KindPolygon:
		return "Polygon"
	case KindAirwire:
		return "Airwire"
	default:
		return "Unknown"
	}
}

// Geom is the capability interface every copper primitive satisfies.
// The set of implementations is closed: only the types in this package can
// satisfy it.
type Geom interface {
	// GeomID returns the primitive's unique identifier.
	GeomID() string

	// Kind returns the variant tag, fixed for the primitive's lifetime.
	Kind() Kind

	// Bounds returns a conservative axis-aligned bounding box derived from
	// the current geometric fields.
	Bounds() geometry.Rect

	// Layers returns every layer the primitive can make contact on.
	Layers() LayerSet

	isGeom()
}

// LayersReachable reports whether a and b share at least one layer. It is
// the cheap gate evaluated before any exact geometry.
func LayersReachable(a, b Geom) bool {
	return a.Layers().Intersects(b.Layers())
}

// LayerFor returns the representative layer of a primitive. Vias report
// the first layer of their pair. Airwires and through-pads have none.
func LayerFor(g Geom) (LayerID, bool) {
	switch v := g.(type) {
	case *Trace:
		return v.Layer, true
	case *Via:
		return v.Pair.Top()
	case *Pad:
		if v.Through {
			return 0, false
		}
		return v.Layer, true
	case *Polygon:
		return v.Layer, true
	case *Airwire:
		return 0, false
	default:
		panic(fmt.Sprintf("artwork: unknown geometry %T", g))
	}
}

// CanSelfIntersect reports whether primitives of this kind have a
// meaningful interior. Airwires are connection hints with no area.
func CanSelfIntersect(k Kind) bool {
	return k != KindAirwire && k >= 0 && k < NumKinds
}
