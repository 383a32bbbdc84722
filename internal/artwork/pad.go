package artwork

import (
	"fmt"
	"math"

	"pcb-netlist/pkg/geometry"
)

// PadShape selects the outline of a pad.
type PadShape int

const (
	// PadObround is a stadium: the pad's rectangle with its short ends fully
	// rounded. A square obround pad is a circle.
	PadObround PadShape = iota
	// PadRect is a sharp-cornered rectangle.
	PadRect
)

func (s PadShape) String() string {
	switch s {
	case PadObround:
		return "Obround"
	case PadRect:
		return "Rect"
	default:
		return "Unknown"
	}
}

// Pad is a component pad. Width runs along the pad's local X axis and
// Length along its local Y axis; Theta rotates pad space into board space.
type Pad struct {
	ID        string           `json:"id"`                  // Unique identifier, e.g., "U1.3"
	Number    string           `json:"number,omitempty"`    // Pad number within the component
	Name      string           `json:"name,omitempty"`      // Pin name, e.g., "VCC"
	Component string           `json:"component,omitempty"` // Host component reference
	Center    geometry.Point2D `json:"center"`
	Width     float64          `json:"width"`
	Length    float64          `json:"length"`
	Theta     float64          `json:"theta"` // Rotation in radians
	Layer     LayerID          `json:"layer"` // Ignored for through pads
	Through   bool             `json:"through,omitempty"`
	Outline   PadShape         `json:"outline,omitempty"`
}

func (p *Pad) GeomID() string { return p.ID }
func (p *Pad) Kind() Kind     { return KindPad }
func (p *Pad) isGeom()        {}

// Layers returns every layer for a through pad, else the pad's own layer.
func (p *Pad) Layers() LayerSet {
	if p.Through {
		return AllLayers
	}
	return p.Layer.Set()
}

// IsThrough reports whether the pad is present on every layer.
func (p *Pad) IsThrough() bool {
	return p.Through
}

// IsCircular reports whether the pad outline is a perfect circle, which
// lets distance tests use the cheaper center-point formulas.
func (p *Pad) IsCircular() bool {
	return p.Outline == PadObround && p.Width == p.Length
}

// PadToWorld returns the transform from pad space to board space.
func (p *Pad) PadToWorld() geometry.AffineTransform {
	return geometry.Translation(p.Center.X, p.Center.Y).Compose(geometry.Rotation(p.Theta))
}

// WorldToPad transforms a board-space point into pad space.
func (p *Pad) WorldToPad(pt geometry.Point2D) geometry.Point2D {
	// Rotation and translation always invert.
	toPad, _ := p.PadToWorld().Inverse()
	return toPad.Apply(pt)
}

// localTraceRepr returns the obround as a pad-space centerline and thickness.
func (p *Pad) localTraceRepr() (geometry.Point2D, geometry.Point2D, float64) {
	w, l := p.width(), p.length()
	if w >= l {
		h := (w - l) / 2
		return geometry.Point2D{X: -h}, geometry.Point2D{X: h}, l
	}
	h := (l - w) / 2
	return geometry.Point2D{Y: -h}, geometry.Point2D{Y: h}, w
}

// TraceRepr returns a board-space trace with the same outline as an obround
// pad. The trace carries the pad's ID and layer.
func (p *Pad) TraceRepr() *Trace {
	a, b, thickness := p.localTraceRepr()
	tf := p.PadToWorld()
	return &Trace{ID: p.ID, P0: tf.Apply(a), P1: tf.Apply(b), Thickness: thickness, Layer: p.Layer}
}

// Corners returns the four board-space corners of the pad rectangle.
func (p *Pad) Corners() []geometry.Point2D {
	hw, hl := p.width()/2, p.length()/2
	tf := p.PadToWorld()
	return []geometry.Point2D{
		tf.Apply(geometry.Point2D{X: -hw, Y: -hl}),
		tf.Apply(geometry.Point2D{X: hw, Y: -hl}),
		tf.Apply(geometry.Point2D{X: hw, Y: hl}),
		tf.Apply(geometry.Point2D{X: -hw, Y: hl}),
	}
}

// Bounds returns the box of the rotated pad rectangle, which also encloses
// the obround outline.
func (p *Pad) Bounds() geometry.Rect {
	if p.IsCircular() {
		r := p.width() / 2
		return geometry.Rect{X: p.Center.X - r, Y: p.Center.Y - r, Width: 2 * r, Height: 2 * r}
	}
	return geometry.BoundingBox(p.Corners())
}

// Shape returns the exact outline of the pad.
func (p *Pad) Shape() Shape {
	switch p.Outline {
	case PadRect:
		return Shape{Core: p.Corners()}
	default:
		if p.IsCircular() {
			return Shape{Core: []geometry.Point2D{p.Center}, Radius: p.width() / 2}
		}
		return p.TraceRepr().Shape()
	}
}

func (p *Pad) width() float64  { return math.Max(0, p.Width) }
func (p *Pad) length() float64 { return math.Max(0, p.Length) }

func (p *Pad) String() string {
	layer := fmt.Sprint(int(p.Layer))
	if p.Through {
		layer = "through"
	}
	return fmt.Sprintf("Pad{ID:%s, Center:(%.3f,%.3f), %gx%g@%.3frad, %s, L:%s}",
		p.ID, p.Center.X, p.Center.Y, p.Width, p.Length, p.Theta, p.Outline, layer)
}
