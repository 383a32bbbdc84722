// Package netlist derives electrical nets from board artwork.
package netlist

import (
	"fmt"
	"regexp"
	"strings"

	"pcb-netlist/internal/artwork"
)

// autoNetRe matches auto-generated net names like "net-001", "net-042".
var autoNetRe = regexp.MustCompile(`^net-\d+$`)

// AutoName returns the auto-generated name for the n-th net.
func AutoName(n int) string {
	return fmt.Sprintf("net-%03d", n)
}

// netNamePriority returns a priority score for a net name.
// Higher is better: 0=auto-generated, 1=component pin, 2=signal/user name.
func netNamePriority(name string) int {
	if name == "" || autoNetRe.MatchString(name) {
		return 0
	}
	if strings.Contains(name, ".") {
		return 1 // component pin name like "U3.14"
	}
	return 2
}

// IsAutoName reports whether the name was generated by AutoName, or is empty.
func IsAutoName(name string) bool {
	return netNamePriority(name) == 0
}

// IsLowPriorityName returns true if the name is auto-generated ("net-NNN")
// or a component.pin name ("U3.14"), and so safe to overwrite.
func IsLowPriorityName(name string) bool {
	return netNamePriority(name) < 2
}

// BetterNetName returns the higher-priority name between a and b.
// At equal priority the shorter name wins, so "GND" beats "GND#2".
func BetterNetName(a, b string) string {
	pa := netNamePriority(a)
	pb := netNamePriority(b)
	if pa > pb {
		return a
	}
	if pb > pa {
		return b
	}
	if len(a) <= len(b) {
		return a
	}
	return b
}

// BaseNetName strips an instance suffix (e.g. "GND#2" -> "GND").
func BaseNetName(name string) string {
	if idx := strings.LastIndex(name, "#"); idx > 0 {
		return name[:idx]
	}
	return name
}

// NetElement identifies a primitive in a net.
type NetElement struct {
	Kind artwork.Kind `json:"kind"`
	ID   string       `json:"id"`
}

// Net is one electrically connected group of primitives.
type Net struct {
	ID         string `json:"id"`   // Fresh UUID per rebuild
	Name       string `json:"name"` // Display name (signal, user, or auto)
	Class      string `json:"class,omitempty"`
	ManualName bool   `json:"manual_name,omitempty"` // True if name was explicitly set by user

	// Members in build order
	Elements []NetElement `json:"elements"`

	// Element IDs for quick lookup
	TraceIDs   []string `json:"trace_ids,omitempty"`
	ViaIDs     []string `json:"via_ids,omitempty"`
	PadIDs     []string `json:"pad_ids,omitempty"`
	PolygonIDs []string `json:"polygon_ids,omitempty"`
	AirwireIDs []string `json:"airwire_ids,omitempty"`

	members map[string]struct{}
}

// NewNet creates an empty net.
func NewNet(id, name string) *Net {
	return &Net{ID: id, Name: name}
}

// Add appends a primitive to the net.
func (n *Net) Add(kind artwork.Kind, id string) {
	n.Elements = append(n.Elements, NetElement{Kind: kind, ID: id})
	n.appendID(kind, id)
	if n.members == nil {
		n.members = make(map[string]struct{})
	}
	n.members[id] = struct{}{}
}

func (n *Net) appendID(kind artwork.Kind, id string) {
	switch kind {
	case artwork.KindTrace:
		n.TraceIDs = append(n.TraceIDs, id)
	case artwork.KindVia:
		n.ViaIDs = append(n.ViaIDs, id)
	case artwork.KindPad:
		n.PadIDs = append(n.PadIDs, id)
	case artwork.KindPolygon:
		n.PolygonIDs = append(n.PolygonIDs, id)
	case artwork.KindAirwire:
		n.AirwireIDs = append(n.AirwireIDs, id)
	}
}

// Members returns the member IDs in build order.
func (n *Net) Members() []string {
	ids := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		ids[i] = e.ID
	}
	return ids
}

// Contains checks if a primitive is in this net.
func (n *Net) Contains(id string) bool {
	if n.members != nil {
		_, ok := n.members[id]
		return ok
	}
	for _, e := range n.Elements {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of primitives in the net.
func (n *Net) Len() int {
	return len(n.Elements)
}

// ElementsOfKind returns the net's primitives of one kind.
func (n *Net) ElementsOfKind(kind artwork.Kind) []NetElement {
	result := make([]NetElement, 0)
	for _, e := range n.Elements {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	return result
}

func (n *Net) String() string {
	return fmt.Sprintf("Net{%s, %d elements}", n.Name, len(n.Elements))
}
