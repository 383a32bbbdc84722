package netlist

import (
	"github.com/google/uuid"

	"pcb-netlist/internal/artwork"
)

// Partition is the result of a connectivity build: every primitive belongs
// to exactly one net. Singletons are nets.
type Partition struct {
	nets  []*Net
	netOf map[string]int
	Stats Stats
}

// newPartition groups geoms by union-find root. Nets are ordered by their
// first member and members keep input order.
func newPartition(geoms []artwork.Geom, uf *UnionFind) *Partition {
	groups := uf.Groups()
	p := &Partition{
		nets:  make([]*Net, 0, len(groups)),
		netOf: make(map[string]int, len(geoms)),
	}
	for k, group := range groups {
		net := NewNet(uuid.NewString(), AutoName(k+1))
		for _, i := range group {
			g := geoms[i]
			net.Add(g.Kind(), g.GeomID())
			p.netOf[g.GeomID()] = k
		}
		p.nets = append(p.nets, net)
	}
	return p
}

// Nets returns the nets in build order.
func (p *Partition) Nets() []*Net {
	if p == nil {
		return nil
	}
	out := make([]*Net, len(p.nets))
	copy(out, p.nets)
	return out
}

// NetFor returns the net holding the primitive with the given ID.
func (p *Partition) NetFor(id string) (*Net, bool) {
	if p == nil {
		return nil, false
	}
	k, ok := p.netOf[id]
	if !ok {
		return nil, false
	}
	return p.nets[k], true
}

// NetByID returns the net with the given net ID.
func (p *Partition) NetByID(id string) (*Net, bool) {
	if p == nil {
		return nil, false
	}
	for _, n := range p.nets {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Len returns the number of nets.
func (p *Partition) Len() int {
	if p == nil {
		return 0
	}
	return len(p.nets)
}

// SameMembership reports whether two partitions group the same primitive
// IDs together, ignoring net identities, names and order.
func (p *Partition) SameMembership(other *Partition) bool {
	if p.Len() != other.Len() {
		return false
	}
	if p == nil || other == nil {
		return true
	}
	if len(p.netOf) != len(other.netOf) {
		return false
	}
	for _, n := range p.nets {
		if n.Len() == 0 {
			continue
		}
		match, ok := other.NetFor(n.Elements[0].ID)
		if !ok || match.Len() != n.Len() {
			return false
		}
		for _, e := range n.Elements[1:] {
			if !match.Contains(e.ID) {
				return false
			}
		}
	}
	return true
}
