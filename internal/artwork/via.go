package artwork

import (
	"fmt"
	"math"

	"pcb-netlist/pkg/geometry"
)

// Via is a plated hole connecting every layer of its via pair.
type Via struct {
	ID     string           `json:"id"`     // Unique identifier, e.g., "via-001"
	Center geometry.Point2D `json:"center"` // Center in board coordinates
	Radius float64          `json:"radius"` // Outer radius of the annular ring
	Pair   ViaPair          `json:"pair"`   // Layers the via connects
}

// NewVia creates a via.
func NewVia(id string, center geometry.Point2D, radius float64, pair ViaPair) *Via {
	return &Via{ID: id, Center: center, Radius: radius, Pair: pair}
}

func (v *Via) GeomID() string   { return v.ID }
func (v *Via) Kind() Kind       { return KindVia }
func (v *Via) Layers() LayerSet { return v.Pair.Set() }
func (v *Via) isGeom()          {}

// Bounds returns the square enclosing the via's disc.
func (v *Via) Bounds() geometry.Rect {
	r := v.radius()
	return geometry.Rect{X: v.Center.X - r, Y: v.Center.Y - r, Width: 2 * r, Height: 2 * r}
}

// Shape returns the via as a disc.
func (v *Via) Shape() Shape {
	return Shape{Core: []geometry.Point2D{v.Center}, Radius: v.radius()}
}

func (v *Via) radius() float64 {
	return math.Max(0, v.Radius)
}

func (v *Via) String() string {
	return fmt.Sprintf("Via{ID:%s, Center:(%.3f,%.3f), R:%.3f, Pair:%s}",
		v.ID, v.Center.X, v.Center.Y, v.Radius, v.Pair)
}
