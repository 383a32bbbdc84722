package artwork

import (
	"fmt"

	"pcb-netlist/pkg/geometry"
)

// Airwire is a virtual line: a user-asserted connection between two points,
// each tagged with its own layer. It has no copper and never touches
// another airwire; it only joins the primitives its endpoints land in.
type Airwire struct {
	ID      string           `json:"id"`
	P0      geometry.Point2D `json:"p0"`
	P1      geometry.Point2D `json:"p1"`
	P0Layer LayerID          `json:"p0_layer"`
	P1Layer LayerID          `json:"p1_layer"`
}

// NewAirwire creates an airwire between two layer-tagged endpoints.
func NewAirwire(id string, p0 geometry.Point2D, l0 LayerID, p1 geometry.Point2D, l1 LayerID) *Airwire {
	return &Airwire{ID: id, P0: p0, P1: p1, P0Layer: l0, P1Layer: l1}
}

func (a *Airwire) GeomID() string { return a.ID }
func (a *Airwire) Kind() Kind     { return KindAirwire }
func (a *Airwire) isGeom()        {}

// Layers returns the union of the two endpoint layers. The airwire as a
// whole has no layer; this set is only used for pruning.
func (a *Airwire) Layers() LayerSet {
	return twoLayers(a.P0Layer, a.P1Layer)
}

// Bounds returns the box of the two endpoints.
func (a *Airwire) Bounds() geometry.Rect {
	return geometry.RectFromPoints(a.P0, a.P1)
}

func (a *Airwire) String() string {
	return fmt.Sprintf("Airwire{ID:%s, (%.3f,%.3f)@%d-(%.3f,%.3f)@%d}",
		a.ID, a.P0.X, a.P0.Y, a.P0Layer, a.P1.X, a.P1.Y, a.P1Layer)
}
