// Package board describes the physical board: its ordered copper layer
// stackup.
package board

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/pkg/colorutil"
)

var (
	// ErrUnknownLayer is returned when a layer name is not in the stackup.
	ErrUnknownLayer = errors.New("unknown layer")
	// ErrDuplicateLayer is returned when adding a layer whose name is taken.
	ErrDuplicateLayer = errors.New("duplicate layer")
	// ErrTooManyLayers is returned when the stackup is full.
	ErrTooManyLayers = errors.New("too many layers")
)

// MaxLayers is the largest stackup a board may have.
const MaxLayers = 256

// Layer is one copper layer of the board.
type Layer struct {
	Name  string     `json:"name"`
	Color color.RGBA `json:"color"`
}

// ChangeReason says what happened to a layer.
type ChangeReason int

const (
	ChangeAdd ChangeReason = iota
	ChangeRemove
)

func (r ChangeReason) String() string {
	switch r {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Change describes one stackup modification.
type Change struct {
	Reason ChangeReason
	Layer  Layer
	Index  int // Position the layer was added at or removed from
}

// Stackup is the ordered list of copper layers, top first. A layer's
// position is its artwork.LayerID, so removing a layer renumbers every
// layer below it.
type Stackup struct {
	mu        sync.RWMutex
	layers    []Layer
	listeners []func(Change)
}

// NewStackup creates a stackup holding the given layers.
func NewStackup(layers ...Layer) (*Stackup, error) {
	s := &Stackup{}
	for _, l := range layers {
		if err := s.AddLayer(l); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// TwoLayer returns a stackup with "Top" and "Bottom" copper.
func TwoLayer() *Stackup {
	return &Stackup{layers: []Layer{
		{Name: "Top", Color: colorutil.LayerColor(0)},
		{Name: "Bottom", Color: colorutil.LayerColor(1)},
	}}
}

// OnChange registers a listener called after every add or remove.
func (s *Stackup) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Stackup) emit(c Change) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// AddLayer appends a layer at the bottom of the stackup. A layer without a
// color is given the default for its position.
func (s *Stackup) AddLayer(l Layer) error {
	s.mu.Lock()
	if l.Name == "" {
		s.mu.Unlock()
		return fmt.Errorf("layer name is required")
	}
	if s.indexLocked(l.Name) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateLayer, l.Name)
	}
	if len(s.layers) >= MaxLayers {
		s.mu.Unlock()
		return fmt.Errorf("%w: limit is %d", ErrTooManyLayers, MaxLayers)
	}
	if l.Color.A == 0 {
		l.Color = colorutil.LayerColor(len(s.layers))
	}
	s.layers = append(s.layers, l)
	idx := len(s.layers) - 1
	s.mu.Unlock()

	s.emit(Change{Reason: ChangeAdd, Layer: l, Index: idx})
	return nil
}

// RemoveLayer removes the named layer.
func (s *Stackup) RemoveLayer(name string) error {
	s.mu.Lock()
	idx := s.indexLocked(name)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}
	l := s.layers[idx]
	s.layers = append(s.layers[:idx], s.layers[idx+1:]...)
	s.mu.Unlock()

	s.emit(Change{Reason: ChangeRemove, Layer: l, Index: idx})
	return nil
}

// Layers returns a copy of the layers, top first.
func (s *Stackup) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Layer, len(s.layers))
	copy(result, s.layers)
	return result
}

// Names returns the layer names, top first.
func (s *Stackup) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.Name
	}
	return names
}

// Len returns the number of layers.
func (s *Stackup) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

func (s *Stackup) indexLocked(name string) int {
	for i, l := range s.layers {
		if l.Name == name {
			return i
		}
	}
	return -1
}

// LayerID returns the position of the named layer.
func (s *Stackup) LayerID(name string) (artwork.LayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(name)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}
	return artwork.LayerID(idx), nil
}

// LayerName returns the name of the layer at id.
func (s *Stackup) LayerName(id artwork.LayerID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || int(id) >= len(s.layers) {
		return "", false
	}
	return s.layers[id].Name, true
}

// ViaPair resolves a via span between two named layers, in either order.
func (s *Stackup) ViaPair(top, bottom string) (artwork.ViaPair, error) {
	a, err := s.LayerID(top)
	if err != nil {
		return artwork.ViaPair{}, err
	}
	b, err := s.LayerID(bottom)
	if err != nil {
		return artwork.ViaPair{}, err
	}
	return artwork.NewViaPair(a, b)
}
