package artwork

import (
	"fmt"
	"math"

	"pcb-netlist/pkg/geometry"
)

// Trace is a straight copper segment of uniform thickness on one layer.
type Trace struct {
	ID        string           `json:"id"`        // Unique identifier, e.g., "trace-001"
	P0        geometry.Point2D `json:"p0"`        // Start of the centerline
	P1        geometry.Point2D `json:"p1"`        // End of the centerline
	Thickness float64          `json:"thickness"` // Full copper width
	Layer     LayerID          `json:"layer"`
}

// NewTrace creates a trace between two points.
func NewTrace(id string, p0, p1 geometry.Point2D, thickness float64, layer LayerID) *Trace {
	return &Trace{ID: id, P0: p0, P1: p1, Thickness: thickness, Layer: layer}
}

func (t *Trace) GeomID() string   { return t.ID }
func (t *Trace) Kind() Kind       { return KindTrace }
func (t *Trace) Layers() LayerSet { return t.Layer.Set() }
func (t *Trace) isGeom()          {}

// Bounds returns the centerline box grown by half the thickness.
func (t *Trace) Bounds() geometry.Rect {
	return geometry.RectFromPoints(t.P0, t.P1).Expand(t.halfWidth())
}

// Length returns the centerline length.
func (t *Trace) Length() float64 {
	return t.P0.Distance(t.P1)
}

// Shape returns the trace as a capsule: its centerline swept by a disc.
func (t *Trace) Shape() Shape {
	return Shape{Core: []geometry.Point2D{t.P0, t.P1}, Radius: t.halfWidth()}
}

func (t *Trace) halfWidth() float64 {
	return math.Max(0, t.Thickness) / 2
}

func (t *Trace) String() string {
	return fmt.Sprintf("Trace{ID:%s, (%.3f,%.3f)-(%.3f,%.3f), T:%.3f, L:%d}",
		t.ID, t.P0.X, t.P0.Y, t.P1.X, t.P1.Y, t.Thickness, t.Layer)
}
