package artwork

import (
	"fmt"

	"pcb-netlist/pkg/geometry"
)

// Polygon is a filled copper region on one layer. Vertices form an open
// ring: the closing edge from the last vertex back to the first is implied.
type Polygon struct {
	ID       string             `json:"id"`
	Vertices []geometry.Point2D `json:"vertices"`
	Layer    LayerID            `json:"layer"`
}

// NewPolygon creates a polygon from its vertex ring.
func NewPolygon(id string, layer LayerID, vertices ...geometry.Point2D) *Polygon {
	return &Polygon{ID: id, Vertices: vertices, Layer: layer}
}

func (p *Polygon) GeomID() string   { return p.ID }
func (p *Polygon) Kind() Kind       { return KindPolygon }
func (p *Polygon) Layers() LayerSet { return p.Layer.Set() }
func (p *Polygon) isGeom()          {}

// Bounds returns the box of the vertex ring.
func (p *Polygon) Bounds() geometry.Rect {
	return geometry.BoundingBox(p.Vertices)
}

// Shape returns the polygon ring. Rings of fewer than three vertices
// degrade to a point or segment.
func (p *Polygon) Shape() Shape {
	return Shape{Core: p.Vertices}
}

func (p *Polygon) String() string {
	return fmt.Sprintf("Polygon{ID:%s, %d vertices, L:%d}", p.ID, len(p.Vertices), p.Layer)
}
