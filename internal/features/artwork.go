// Package features holds the board's copper artwork and its committed
// net assignment.
package features

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/internal/netlist"
	"pcb-netlist/pkg/geometry"
)

var (
	// ErrDuplicateID is returned when adding a primitive whose ID is taken.
	ErrDuplicateID = errors.New("duplicate primitive ID")
	// ErrEmptyID is returned when adding a primitive without an ID.
	ErrEmptyID = errors.New("primitive has no ID")
	// ErrUnknownNet is returned when naming a net that does not exist.
	ErrUnknownNet = errors.New("unknown net")
)

// hitOrder is the order kinds are hit-tested in: small, precise targets
// before large ones.
var hitOrder = []artwork.Kind{
	artwork.KindVia, artwork.KindPad, artwork.KindTrace, artwork.KindAirwire, artwork.KindPolygon,
}

// Artwork manages every copper primitive on the board and the nets last
// derived from them.
type Artwork struct {
	mu sync.RWMutex

	// All primitives indexed by ID
	geoms map[string]artwork.Geom

	// Primitive IDs in insertion order
	order []string

	// Committed net assignment; nil until the first rebuild
	nets *netlist.Partition

	// stale is set when primitives change after the last rebuild
	stale bool

	// gen counts changes to the primitive set
	gen uint64
}

// NewArtwork creates an empty artwork store.
func NewArtwork() *Artwork {
	return &Artwork{
		geoms: make(map[string]artwork.Geom),
		order: make([]string, 0),
	}
}

// Add adds a primitive.
func (a *Artwork) Add(g artwork.Geom) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addLocked(g)
}

func (a *Artwork) addLocked(g artwork.Geom) error {
	id := g.GeomID()
	if id == "" {
		return fmt.Errorf("%w: %v", ErrEmptyID, g)
	}
	if _, exists := a.geoms[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	a.geoms[id] = g
	a.order = append(a.order, id)
	a.stale = true
	a.gen++
	return nil
}

// AddAll adds several primitives. Nothing is added if any of them fails.
func (a *Artwork) AddAll(geoms []artwork.Geom) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[string]struct{}, len(geoms))
	for _, g := range geoms {
		id := g.GeomID()
		if id == "" {
			return fmt.Errorf("%w: %v", ErrEmptyID, g)
		}
		_, inStore := a.geoms[id]
		_, inBatch := seen[id]
		if inStore || inBatch {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	for _, g := range geoms {
		_ = a.addLocked(g)
	}
	return nil
}

// Remove removes a primitive by ID.
func (a *Artwork) Remove(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.geoms[id]; !ok {
		return false
	}
	delete(a.geoms, id)
	a.order = removeString(a.order, id)
	a.stale = true
	a.gen++
	return true
}

// Clear removes every primitive and the committed nets.
func (a *Artwork) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.geoms = make(map[string]artwork.Geom)
	a.order = a.order[:0]
	a.nets = nil
	a.stale = false
	a.gen++
}

// Get returns the primitive with the given ID.
func (a *Artwork) Get(id string) (artwork.Geom, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.geoms[id]
	return g, ok
}

// All returns every primitive in insertion order.
func (a *Artwork) All() []artwork.Geom {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

func (a *Artwork) snapshotLocked() []artwork.Geom {
	result := make([]artwork.Geom, 0, len(a.order))
	for _, id := range a.order {
		result = append(result, a.geoms[id])
	}
	return result
}

// Count returns the number of primitives.
func (a *Artwork) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}

// CountByKind returns the number of primitives of each kind.
func (a *Artwork) CountByKind() map[artwork.Kind]int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	counts := make(map[artwork.Kind]int)
	for _, g := range a.geoms {
		counts[g.Kind()]++
	}
	return counts
}

// HitTest finds the primitive containing p, preferring vias and pads over
// traces, and traces over polygons. Returns nil if nothing is hit.
func (a *Artwork) HitTest(p geometry.Point2D) artwork.Geom {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, kind := range hitOrder {
		for _, id := range a.order {
			g := a.geoms[id]
			if g.Kind() == kind && artwork.Contains(g, p) {
				return g
			}
		}
	}
	return nil
}

// HitTestAll finds every primitive containing p, in insertion order.
func (a *Artwork) HitTestAll(p geometry.Point2D) []artwork.Geom {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var hits []artwork.Geom
	for _, id := range a.order {
		if g := a.geoms[id]; artwork.Contains(g, p) {
			hits = append(hits, g)
		}
	}
	return hits
}

// GetInRegion returns the primitives whose bounds overlap region.
func (a *Artwork) GetInRegion(region geometry.Rect) []artwork.Geom {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []artwork.Geom
	for _, id := range a.order {
		if g := a.geoms[id]; g.Bounds().Overlaps(region) {
			result = append(result, g)
		}
	}
	return result
}

// Electrical net methods

// Nets returns the committed nets, or nil before the first rebuild.
func (a *Artwork) Nets() []*netlist.Net {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nets.Nets()
}

// Partition returns the committed partition, or nil before the first rebuild.
func (a *Artwork) Partition() *netlist.Partition {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nets
}

// NetCount returns the number of committed nets.
func (a *Artwork) NetCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nets.Len()
}

// NetFor returns the committed net containing a primitive.
func (a *Artwork) NetFor(id string) *netlist.Net {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, _ := a.nets.NetFor(id)
	return n
}

// NetByName returns a committed net by name.
func (a *Artwork) NetByName(name string) *netlist.Net {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, n := range a.nets.Nets() {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NetsStale reports whether primitives changed since the last rebuild.
func (a *Artwork) NetsStale() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stale
}

// SetNetName names the net with the given net ID and marks the name as
// user-assigned so rebuilds keep it.
func (a *Artwork) SetNetName(netID, name, class string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.nets.NetByID(netID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNet, netID)
	}
	n.Name = name
	n.Class = class
	n.ManualName = true
	return nil
}

// NameNetOf names the net containing the given primitive.
func (a *Artwork) NameNetOf(memberID, name, class string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.nets.NetFor(memberID)
	if !ok {
		return fmt.Errorf("%w: no net holds %s", ErrUnknownNet, memberID)
	}
	n.Name = name
	n.Class = class
	n.ManualName = true
	return nil
}

// RebuildConnectivity recomputes the nets from a snapshot of the current
// primitives. On success the new nets replace the old ones in one step,
// inheriting their names where members carry over. On failure, including
// cancellation, the committed nets are left untouched. Edits made while
// the build runs leave the new nets marked stale.
func (a *Artwork) RebuildConnectivity(ctx context.Context, b *netlist.Builder, progress netlist.ProgressFunc) error {
	a.mu.RLock()
	geoms := a.snapshotLocked()
	gen := a.gen
	a.mu.RUnlock()

	p, err := b.Build(ctx, geoms, progress)
	if err != nil {
		log.Printf("Connectivity: rebuild of %d primitives abandoned: %v", len(geoms), err)
		return err
	}

	a.mu.Lock()
	carryNames(a.nets, p)
	a.nets = p
	a.stale = a.gen != gen
	a.mu.Unlock()

	s := p.Stats
	log.Printf("Connectivity: %d primitives -> %d nets (%d candidates, %d layer-pruned, %d joins) in %v",
		s.Primitives, p.Len(), s.Candidates, s.LayerPruned, s.Intersections, s.Elapsed)
	return nil
}

// carryNames copies names from prev onto the nets of next. Each new net
// takes the best name among the old nets of its members, user-assigned
// names first. A name inherited by more than one new net (a split) gets an
// instance suffix on the later ones.
func carryNames(prev, next *netlist.Partition) {
	if prev == nil {
		return
	}
	used := make(map[string]int)
	for _, n := range next.Nets() {
		var best *netlist.Net
		for _, id := range n.Members() {
			old, ok := prev.NetFor(id)
			if !ok || old == best {
				continue
			}
			if best == nil || betterSource(old, best) {
				best = old
			}
		}
		if best == nil || (!best.ManualName && netlist.IsAutoName(best.Name)) {
			continue
		}

		name := best.Name
		base := netlist.BaseNetName(name)
		if k := used[base]; k > 0 {
			name = fmt.Sprintf("%s#%d", base, k+1)
		}
		used[base]++

		n.Name = name
		n.Class = best.Class
		n.ManualName = best.ManualName
	}
}

func betterSource(a, b *netlist.Net) bool {
	if a.ManualName != b.ManualName {
		return a.ManualName
	}
	return netlist.BetterNetName(a.Name, b.Name) == a.Name && a.Name != b.Name
}

// Helper functions

func removeString(slice []string, s string) []string {
	for i, v := range slice {
		if v == s {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
