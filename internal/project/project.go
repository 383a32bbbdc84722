// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/internal/board"
	"pcb-netlist/internal/netlist"
	"pcb-netlist/pkg/geometry"
)

// CurrentVersion is the file format version written by Save.
const CurrentVersion = 1

// File represents a traced board project (.pcbnet). Layers are referenced
// by name and resolved against the stackup on load.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Copper layers, top first
	Layers []string `json:"layers"`

	Traces   []TraceData   `json:"traces,omitempty"`
	Vias     []ViaData     `json:"vias,omitempty"`
	Pads     []PadData     `json:"pads,omitempty"`
	Polygons []PolygonData `json:"polygons,omitempty"`
	Airwires []AirwireData `json:"airwires,omitempty"`

	// User-assigned net names, keyed by a member primitive
	NetNames []NetName `json:"net_names,omitempty"`
}

// TraceData is a serialized trace.
type TraceData struct {
	ID        string           `json:"id"`
	P0        geometry.Point2D `json:"p0"`
	P1        geometry.Point2D `json:"p1"`
	Thickness float64          `json:"thickness"`
	Layer     string           `json:"layer"`
}

// ViaData is a serialized via spanning From..To.
type ViaData struct {
	ID     string           `json:"id"`
	Center geometry.Point2D `json:"center"`
	Radius float64          `json:"radius"`
	From   string           `json:"from"`
	To     string           `json:"to"`
}

// PadData is a serialized pad. Layer is ignored for through pads.
type PadData struct {
	ID        string           `json:"id"`
	Number    string           `json:"number,omitempty"`
	Name      string           `json:"name,omitempty"`
	Component string           `json:"component,omitempty"`
	Center    geometry.Point2D `json:"center"`
	Width     float64          `json:"width"`
	Length    float64          `json:"length"`
	Theta     float64          `json:"theta,omitempty"`
	Layer     string           `json:"layer,omitempty"`
	Through   bool             `json:"through,omitempty"`
	Outline   string           `json:"outline,omitempty"` // "obround" (default) or "rect"
}

// PolygonData is a serialized copper pour.
type PolygonData struct {
	ID       string             `json:"id"`
	Vertices []geometry.Point2D `json:"vertices"`
	Layer    string             `json:"layer"`
}

// AirwireData is a serialized airwire.
type AirwireData struct {
	ID      string           `json:"id"`
	P0      geometry.Point2D `json:"p0"`
	P0Layer string           `json:"p0_layer"`
	P1      geometry.Point2D `json:"p1"`
	P1Layer string           `json:"p1_layer"`
}

// NetName names the net holding Member.
type NetName struct {
	Member string `json:"member"`
	Name   string `json:"name"`
	Class  string `json:"class,omitempty"`
}

// New creates a new empty project on a two-layer board.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Layers:   board.TwoLayer().Names(),
	}
}

// Load loads a project from a .pcbnet file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("project %s: unsupported version %d", path, proj.Version)
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Version == 0 {
		p.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Stackup builds the project's layer stackup. A project without layers
// gets a two-layer board.
func (p *File) Stackup() (*board.Stackup, error) {
	if len(p.Layers) == 0 {
		return board.TwoLayer(), nil
	}
	layers := make([]board.Layer, len(p.Layers))
	for i, name := range p.Layers {
		layers[i] = board.Layer{Name: name}
	}
	return board.NewStackup(layers...)
}

func parseOutline(s string) (artwork.PadShape, error) {
	switch strings.ToLower(s) {
	case "", "obround", "round", "circle":
		return artwork.PadObround, nil
	case "rect", "rectangle", "square":
		return artwork.PadRect, nil
	default:
		return 0, fmt.Errorf("unknown pad outline %q", s)
	}
}

func outlineName(s artwork.PadShape) string {
	if s == artwork.PadRect {
		return "rect"
	}
	return ""
}

// Resolve converts the serialized primitives into artwork, looking layer
// names up in st. The result is ordered traces, vias, pads, polygons, then
// airwires.
func (p *File) Resolve(st *board.Stackup) ([]artwork.Geom, error) {
	geoms := make([]artwork.Geom, 0,
		len(p.Traces)+len(p.Vias)+len(p.Pads)+len(p.Polygons)+len(p.Airwires))

	for _, t := range p.Traces {
		layer, err := st.LayerID(t.Layer)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", t.ID, err)
		}
		geoms = append(geoms, artwork.NewTrace(t.ID, t.P0, t.P1, t.Thickness, layer))
	}

	for _, v := range p.Vias {
		pair, err := st.ViaPair(v.From, v.To)
		if err != nil {
			return nil, fmt.Errorf("via %s: %w", v.ID, err)
		}
		geoms = append(geoms, artwork.NewVia(v.ID, v.Center, v.Radius, pair))
	}

	for _, d := range p.Pads {
		outline, err := parseOutline(d.Outline)
		if err != nil {
			return nil, fmt.Errorf("pad %s: %w", d.ID, err)
		}
		pad := &artwork.Pad{
			ID:        d.ID,
			Number:    d.Number,
			Name:      d.Name,
			Component: d.Component,
			Center:    d.Center,
			Width:     d.Width,
			Length:    d.Length,
			Theta:     d.Theta,
			Through:   d.Through,
			Outline:   outline,
		}
		if !d.Through {
			if pad.Layer, err = st.LayerID(d.Layer); err != nil {
				return nil, fmt.Errorf("pad %s: %w", d.ID, err)
			}
		}
		geoms = append(geoms, pad)
	}

	for _, poly := range p.Polygons {
		layer, err := st.LayerID(poly.Layer)
		if err != nil {
			return nil, fmt.Errorf("polygon %s: %w", poly.ID, err)
		}
		geoms = append(geoms, artwork.NewPolygon(poly.ID, layer, poly.Vertices...))
	}

	for _, a := range p.Airwires {
		l0, err := st.LayerID(a.P0Layer)
		if err != nil {
			return nil, fmt.Errorf("airwire %s: %w", a.ID, err)
		}
		l1, err := st.LayerID(a.P1Layer)
		if err != nil {
			return nil, fmt.Errorf("airwire %s: %w", a.ID, err)
		}
		geoms = append(geoms, artwork.NewAirwire(a.ID, a.P0, l0, a.P1, l1))
	}

	return geoms, nil
}

// FromArtwork serializes primitives and user-named nets into a project.
func FromArtwork(name string, st *board.Stackup, geoms []artwork.Geom, nets []*netlist.Net) (*File, error) {
	p := New(name)
	p.Layers = st.Names()

	layerName := func(id artwork.LayerID) (string, error) {
		n, ok := st.LayerName(id)
		if !ok {
			return "", fmt.Errorf("%w: layer %d", board.ErrUnknownLayer, id)
		}
		return n, nil
	}

	for _, g := range geoms {
		var err error
		switch v := g.(type) {
		case *artwork.Trace:
			d := TraceData{ID: v.ID, P0: v.P0, P1: v.P1, Thickness: v.Thickness}
			if d.Layer, err = layerName(v.Layer); err == nil {
				p.Traces = append(p.Traces, d)
			}
		case *artwork.Via:
			d := ViaData{ID: v.ID, Center: v.Center, Radius: v.Radius}
			if d.From, err = layerName(v.Pair.First); err == nil {
				if d.To, err = layerName(v.Pair.Last); err == nil {
					p.Vias = append(p.Vias, d)
				}
			}
		case *artwork.Pad:
			d := PadData{
				ID: v.ID, Number: v.Number, Name: v.Name, Component: v.Component,
				Center: v.Center, Width: v.Width, Length: v.Length, Theta: v.Theta,
				Through: v.Through, Outline: outlineName(v.Outline),
			}
			if !v.Through {
				d.Layer, err = layerName(v.Layer)
			}
			if err == nil {
				p.Pads = append(p.Pads, d)
			}
		case *artwork.Polygon:
			d := PolygonData{ID: v.ID, Vertices: v.Vertices}
			if d.Layer, err = layerName(v.Layer); err == nil {
				p.Polygons = append(p.Polygons, d)
			}
		case *artwork.Airwire:
			d := AirwireData{ID: v.ID, P0: v.P0, P1: v.P1}
			if d.P0Layer, err = layerName(v.P0Layer); err == nil {
				if d.P1Layer, err = layerName(v.P1Layer); err == nil {
					p.Airwires = append(p.Airwires, d)
				}
			}
		default:
			err = fmt.Errorf("unsupported primitive %T", g)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", g.GeomID(), err)
		}
	}

	for _, n := range nets {
		if !n.ManualName || n.Len() == 0 {
			continue
		}
		p.NetNames = append(p.NetNames, NetName{Member: n.Elements[0].ID, Name: n.Name, Class: n.Class})
	}
	return p, nil
}
