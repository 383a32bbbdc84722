package artwork

import (
	"fmt"
	"strings"
)

// LayerID identifies a copper layer by its position in the stackup (0 = top).
type LayerID int

// Valid reports whether the layer can hold copper. Negative IDs are not
// layers.
func (l LayerID) Valid() bool {
	return l >= 0
}

// Set returns a LayerSet holding only this layer. Invalid layers yield the
// empty set, which never reaches anything.
func (l LayerID) Set() LayerSet {
	if !l.Valid() {
		return LayerSet{}
	}
	return LayerSet{n: 1, spans: [2]layerSpan{{l, l}}}
}

// layerSpan is an inclusive run of layers, lo <= hi.
type layerSpan struct {
	lo, hi LayerID
}

func (s layerSpan) overlaps(o layerSpan) bool {
	return s.lo <= o.hi && o.lo <= s.hi
}

// LayerSet is a set of copper layers with no upper bound on layer number.
// It is empty, every layer, or at most two contiguous spans: enough for a
// single layer, a via span, or an airwire's two endpoint layers. LayerSet
// values are comparable with ==.
type LayerSet struct {
	all   bool
	n     uint8
	spans [2]layerSpan
}

// AllLayers is the layer set of a through-hole pad.
var AllLayers = LayerSet{all: true}

// SpanSet returns the layers from a to b inclusive, in either order. Negative
// layers are dropped from the span.
func SpanSet(a, b LayerID) LayerSet {
	if a > b {
		a, b = b, a
	}
	if b < 0 {
		return LayerSet{}
	}
	if a < 0 {
		a = 0
	}
	return LayerSet{n: 1, spans: [2]layerSpan{{a, b}}}
}

// twoLayers returns the set holding layers a and b.
func twoLayers(a, b LayerID) LayerSet {
	switch {
	case !a.Valid():
		return b.Set()
	case !b.Valid():
		return a.Set()
	}
	if a > b {
		a, b = b, a
	}
	if b-a <= 1 {
		return SpanSet(a, b)
	}
	return LayerSet{n: 2, spans: [2]layerSpan{{a, a}, {b, b}}}
}

// Has reports whether the set contains the layer.
func (s LayerSet) Has(l LayerID) bool {
	if !l.Valid() {
		return false
	}
	if s.all {
		return true
	}
	for _, sp := range s.spans[:s.n] {
		if sp.lo <= l && l <= sp.hi {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one layer.
func (s LayerSet) Intersects(other LayerSet) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return false
	}
	if s.all || other.all {
		return true
	}
	for _, a := range s.spans[:s.n] {
		for _, b := range other.spans[:other.n] {
			if a.overlaps(b) {
				return true
			}
		}
	}
	return false
}

// IsEmpty reports whether the set contains no layers.
func (s LayerSet) IsEmpty() bool {
	return !s.all && s.n == 0
}

// IsAll reports whether the set holds every layer.
func (s LayerSet) IsAll() bool {
	return s.all
}

// Layers returns the layers in ascending order. AllLayers cannot be
// enumerated and returns nil.
func (s LayerSet) Layers() []LayerID {
	if s.all {
		return nil
	}
	var out []LayerID
	for _, sp := range s.spans[:s.n] {
		for l := sp.lo; l <= sp.hi; l++ {
			out = append(out, l)
		}
	}
	return out
}

func (s LayerSet) String() string {
	if s.all {
		return "{all}"
	}
	parts := make([]string, 0, s.n)
	for _, sp := range s.spans[:s.n] {
		if sp.lo == sp.hi {
			parts = append(parts, fmt.Sprint(int(sp.lo)))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", sp.lo, sp.hi))
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ViaPair is the contiguous, non-empty span of layers a via connects.
type ViaPair struct {
	First LayerID `json:"first"`
	Last  LayerID `json:"last"`
}

// NewViaPair builds a via pair spanning a and b inclusive, in either order.
func NewViaPair(a, b LayerID) (ViaPair, error) {
	if !a.Valid() || !b.Valid() {
		return ViaPair{}, fmt.Errorf("via pair %d-%d: negative layer", a, b)
	}
	if a > b {
		a, b = b, a
	}
	return ViaPair{First: a, Last: b}, nil
}

// Set returns the span as a LayerSet. A pair whose endpoints are reversed is
// normalised rather than treated as empty.
func (vp ViaPair) Set() LayerSet {
	return SpanSet(vp.First, vp.Last)
}

// Top returns the first layer of the span, or false if the span holds no
// valid layer.
func (vp ViaPair) Top() (LayerID, bool) {
	s := vp.Set()
	if s.IsEmpty() {
		return 0, false
	}
	return s.spans[0].lo, true
}

// AllLayers returns every layer in the span, top to bottom.
func (vp ViaPair) AllLayers() []LayerID {
	return vp.Set().Layers()
}

func (vp ViaPair) String() string {
	return fmt.Sprintf("%d-%d", vp.First, vp.Last)
}
