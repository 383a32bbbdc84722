package features

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/internal/netlist"
	"pcb-netlist/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}

func newBoard(t *testing.T, geoms ...artwork.Geom) *Artwork {
	t.Helper()
	a := NewArtwork()
	require.NoError(t, a.AddAll(geoms))
	return a
}

func rebuild(t *testing.T, a *Artwork) {
	t.Helper()
	require.NoError(t, a.RebuildConnectivity(context.Background(), &netlist.Builder{}, nil))
}

func TestArtwork_AddRemove(t *testing.T) {
	a := NewArtwork()
	tr := artwork.NewTrace("t1", pt(0, 0), pt(5, 0), 1, 0)
	require.NoError(t, a.Add(tr))

	assert.ErrorIs(t, a.Add(artwork.NewTrace("t1", pt(0, 0), pt(1, 0), 1, 0)), ErrDuplicateID)
	assert.ErrorIs(t, a.Add(artwork.NewTrace("", pt(0, 0), pt(1, 0), 1, 0)), ErrEmptyID)

	err := a.AddAll([]artwork.Geom{
		artwork.NewVia("v1", pt(0, 0), 1, artwork.ViaPair{}),
		artwork.NewVia("v1", pt(3, 0), 1, artwork.ViaPair{}),
	})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, a.Count(), "failed batch adds nothing")

	require.NoError(t, a.Add(artwork.NewVia("v1", pt(0, 0), 1, artwork.ViaPair{})))
	g, ok := a.Get("v1")
	require.True(t, ok)
	assert.Equal(t, artwork.KindVia, g.Kind())
	assert.Equal(t, map[artwork.Kind]int{artwork.KindTrace: 1, artwork.KindVia: 1}, a.CountByKind())

	assert.True(t, a.Remove("t1"))
	assert.False(t, a.Remove("t1"))
	assert.Equal(t, 1, a.Count())

	a.Clear()
	assert.Equal(t, 0, a.Count())
	assert.Nil(t, a.Nets())
}

func TestArtwork_AllKeepsInsertionOrder(t *testing.T) {
	a := NewArtwork()
	for i := 9; i >= 0; i-- {
		require.NoError(t, a.Add(artwork.NewTrace(fmt.Sprintf("t%d", i), pt(0, 0), pt(1, 0), 1, 0)))
	}
	all := a.All()
	require.Len(t, all, 10)
	assert.Equal(t, "t9", all[0].GeomID())
	assert.Equal(t, "t0", all[9].GeomID())
}

func TestArtwork_HitTest(t *testing.T) {
	a := newBoard(t,
		artwork.NewPolygon("pour", 0, pt(-10, -10), pt(10, -10), pt(10, 10), pt(-10, 10)),
		artwork.NewTrace("trace", pt(-5, 0), pt(5, 0), 1, 0),
		artwork.NewVia("via", pt(0, 0), 0.5, artwork.ViaPair{}),
	)

	assert.Equal(t, "via", a.HitTest(pt(0, 0)).GeomID())
	assert.Equal(t, "trace", a.HitTest(pt(3, 0)).GeomID())
	assert.Equal(t, "pour", a.HitTest(pt(3, 5)).GeomID())
	assert.Nil(t, a.HitTest(pt(30, 30)))

	assert.Len(t, a.HitTestAll(pt(0, 0)), 3)
	assert.Len(t, a.HitTestAll(pt(3, 5)), 1)

	region := a.GetInRegion(geometry.NewRect(4, -1, 2, 2))
	ids := make([]string, len(region))
	for i, g := range region {
		ids[i] = g.GeomID()
	}
	assert.Equal(t, []string{"pour", "trace"}, ids)
}

func TestArtwork_Rebuild(t *testing.T) {
	a := newBoard(t,
		artwork.NewTrace("a", pt(0, 0), pt(10, 0), 0.5, 0),
		artwork.NewTrace("b", pt(10, 0), pt(10, 10), 0.5, 0),
		artwork.NewTrace("c", pt(20, 0), pt(30, 0), 0.5, 0),
	)
	assert.Nil(t, a.Nets())
	assert.True(t, a.NetsStale())

	rebuild(t, a)
	assert.Equal(t, 2, a.NetCount())
	assert.False(t, a.NetsStale())
	assert.Same(t, a.NetFor("a"), a.NetFor("b"))
	assert.Nil(t, a.NetFor("missing"))
	assert.NotNil(t, a.NetByName("net-002"))

	require.NoError(t, a.Add(artwork.NewTrace("d", pt(30, 0), pt(30, 5), 0.5, 0)))
	assert.True(t, a.NetsStale())
	assert.Nil(t, a.NetFor("d"), "nets are not updated until rebuild")
}

func TestArtwork_CancelledRebuildKeepsNets(t *testing.T) {
	a := NewArtwork()
	for i := 0; i < 500; i++ {
		x := float64(i) * 10
		require.NoError(t, a.Add(artwork.NewTrace(fmt.Sprintf("t%d", i), pt(x, 0), pt(x+1, 0), 0.5, 0)))
	}
	rebuild(t, a)
	before := a.Partition()
	require.Equal(t, 500, before.Len())

	// Join the first two traces, then cancel half way.
	require.NoError(t, a.Add(artwork.NewTrace("bridge", pt(0, 0), pt(10, 0), 0.5, 0)))
	err := a.RebuildConnectivity(context.Background(), &netlist.Builder{}, func(current, total int) error {
		if current == 250 {
			return netlist.Cancel
		}
		return nil
	})
	require.ErrorIs(t, err, netlist.ErrCancelled)

	assert.Same(t, before, a.Partition())
	assert.Equal(t, 500, a.NetCount())
	assert.NotSame(t, a.NetFor("t0"), a.NetFor("t1"))
	assert.True(t, a.NetsStale())

	rebuild(t, a)
	assert.Equal(t, 499, a.NetCount())
	assert.Same(t, a.NetFor("t0"), a.NetFor("t1"))
}

func TestArtwork_EditDuringRebuildStaysStale(t *testing.T) {
	a := newBoard(t, artwork.NewTrace("t1", pt(0, 0), pt(10, 0), 0.5, 0))

	added := false
	err := a.RebuildConnectivity(context.Background(), &netlist.Builder{}, func(current, total int) error {
		if !added {
			added = true
			return a.Add(artwork.NewTrace("t2", pt(10, 0), pt(20, 0), 0.5, 0))
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, a.NetCount())
	assert.Nil(t, a.NetFor("t2"))
	assert.True(t, a.NetsStale(), "t2 was added after the snapshot")

	rebuild(t, a)
	assert.False(t, a.NetsStale())
	assert.Same(t, a.NetFor("t1"), a.NetFor("t2"))

	// Removal mid-build is caught the same way.
	err = a.RebuildConnectivity(context.Background(), &netlist.Builder{}, func(current, total int) error {
		a.Remove("t2")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, a.NetsStale())
}

func TestArtwork_NamesCarryAcrossRebuild(t *testing.T) {
	a := newBoard(t,
		artwork.NewTrace("a", pt(0, 0), pt(10, 0), 0.5, 0),
		artwork.NewTrace("b", pt(10, 0), pt(20, 0), 0.5, 0),
		artwork.NewTrace("c", pt(40, 0), pt(50, 0), 0.5, 0),
	)
	rebuild(t, a)

	net := a.NetFor("a")
	require.NoError(t, a.SetNetName(net.ID, "GND", "power"))
	assert.ErrorIs(t, a.SetNetName("no-such-net", "X", ""), ErrUnknownNet)
	require.NoError(t, a.NameNetOf("c", "U1.4", ""))

	rebuild(t, a)
	gnd := a.NetByName("GND")
	require.NotNil(t, gnd)
	assert.True(t, gnd.ManualName)
	assert.Equal(t, "power", gnd.Class)
	assert.NotEqual(t, net.ID, gnd.ID, "fresh identity per rebuild")
	assert.Same(t, gnd, a.NetFor("b"))

	// Splitting GND: the second piece gets an instance suffix.
	require.True(t, a.Remove("b"))
	require.NoError(t, a.Add(artwork.NewTrace("b", pt(12, 0), pt(20, 0), 0.5, 0)))
	rebuild(t, a)
	assert.Equal(t, "GND", a.NetFor("a").Name)
	assert.Equal(t, "GND#2", a.NetFor("b").Name)
	assert.Equal(t, "U1.4", a.NetFor("c").Name)

	// Merging: the signal name beats the component-pin name.
	require.NoError(t, a.Add(artwork.NewTrace("link", pt(20, 0), pt(40, 0), 0.5, 0)))
	rebuild(t, a)
	assert.Equal(t, "GND", a.NetFor("a").Name)
	assert.Equal(t, "GND#2", a.NetFor("c").Name)
	assert.Same(t, a.NetFor("b"), a.NetFor("c"))
}
