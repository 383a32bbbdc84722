package netlist

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/internal/spatial"
	"pcb-netlist/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}

// randomBoard builds n primitives of mixed kinds on layers 0-2 in a
// size x size area.
func randomBoard(rng *rand.Rand, n int, size float64) []artwork.Geom {
	p := func() geometry.Point2D { return pt(rng.Float64()*size, rng.Float64()*size) }
	near := func(c geometry.Point2D) geometry.Point2D {
		return pt(c.X+rng.Float64()*6-3, c.Y+rng.Float64()*6-3)
	}
	layer := func() artwork.LayerID { return artwork.LayerID(rng.Intn(3)) }

	geoms := make([]artwork.Geom, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("g%d", i)
		switch rng.Intn(5) {
		case 0, 1:
			a := p()
			geoms = append(geoms, artwork.NewTrace(id, a, near(a), rng.Float64()*0.5, layer()))
		case 2:
			l0, l1 := layer(), layer()
			vp, _ := artwork.NewViaPair(l0, l1)
			geoms = append(geoms, artwork.NewVia(id, p(), 0.2+rng.Float64()*0.5, vp))
		case 3:
			geoms = append(geoms, &artwork.Pad{
				ID: id, Center: p(), Width: 0.5 + rng.Float64(), Length: 0.5 + rng.Float64(),
				Theta: rng.Float64() * math.Pi, Layer: layer(), Through: rng.Intn(5) == 0,
				Outline: artwork.PadShape(rng.Intn(2)),
			})
		case 4:
			if rng.Intn(2) == 0 {
				a := p()
				geoms = append(geoms, artwork.NewAirwire(id, a, layer(), near(a), layer()))
			} else {
				c := p()
				geoms = append(geoms, artwork.NewPolygon(id, layer(),
					c, pt(c.X+2, c.Y), pt(c.X+2, c.Y+1.5), pt(c.X, c.Y+1.5)))
			}
		}
	}
	return geoms
}

// referenceComponents computes connected components by testing every pair
// and handing the touch graph to gonum.
func referenceComponents(geoms []artwork.Geom) [][]string {
	g := simple.NewUndirectedGraph()
	for i := range geoms {
		g.AddNode(simple.Node(i))
	}
	for i := range geoms {
		for j := i + 1; j < len(geoms); j++ {
			if artwork.Intersects(geoms[i], geoms[j]) {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}

	var out [][]string
	for _, comp := range topo.ConnectedComponents(g) {
		ids := make([]string, len(comp))
		for k, node := range comp {
			ids[k] = geoms[node.ID()].GeomID()
		}
		out = append(out, ids)
	}
	return out
}

func requireMatchesReference(t *testing.T, p *Partition, geoms []artwork.Geom) {
	t.Helper()
	ref := referenceComponents(geoms)
	require.Equal(t, len(ref), p.Len(), "net count")
	for _, comp := range ref {
		net, ok := p.NetFor(comp[0])
		require.True(t, ok)
		require.Equal(t, len(comp), net.Len(), "net holding %s", comp[0])
		for _, id := range comp {
			require.True(t, net.Contains(id), "%s should share a net with %s", id, comp[0])
		}
	}
}

func build(t *testing.T, b *Builder, geoms []artwork.Geom) *Partition {
	t.Helper()
	p, err := b.Build(context.Background(), geoms, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestBuild_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	geoms := randomBoard(rng, 400, 60)

	for _, kind := range []spatial.Kind{spatial.KindRTree, spatial.KindGrid, spatial.KindBrute} {
		for _, workers := range []int{1, 4} {
			t.Run(fmt.Sprintf("%s/%d", kind, workers), func(t *testing.T) {
				b := &Builder{Index: kind, CellSize: 2, Workers: workers}
				p := build(t, b, geoms)
				requireMatchesReference(t, p, geoms)
				assert.Equal(t, len(geoms), p.Stats.Primitives)
			})
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	geoms := randomBoard(rng, 300, 40)
	b := &Builder{}

	first := build(t, b, geoms)
	second := build(t, b, geoms)
	assert.True(t, first.SameMembership(second))
	assert.True(t, second.SameMembership(first))

	// Fresh identities every build
	assert.NotEqual(t, first.Nets()[0].ID, second.Nets()[0].ID)

	parallel := build(t, &Builder{Index: spatial.KindGrid, Workers: 3}, geoms)
	assert.True(t, first.SameMembership(parallel))
}

func TestBuild_TracesSharingEndpoint(t *testing.T) {
	geoms := []artwork.Geom{
		artwork.NewTrace("a", pt(0, 0), pt(10, 0), 0.2, 0),
		artwork.NewTrace("b", pt(10, 0), pt(10, 10), 0.2, 0),
		artwork.NewTrace("c", pt(20, 0), pt(30, 0), 0.2, 0),
	}
	p := build(t, &Builder{}, geoms)

	assert.Equal(t, 2, p.Len())
	na, _ := p.NetFor("a")
	nb, _ := p.NetFor("b")
	nc, _ := p.NetFor("c")
	assert.Same(t, na, nb)
	assert.NotSame(t, na, nc)
	assert.Equal(t, []string{"a", "b"}, na.TraceIDs)
	assert.Equal(t, "net-001", na.Name)
	assert.Equal(t, "net-002", nc.Name)
}

func TestBuild_ViaJoinsLayers(t *testing.T) {
	vp, err := artwork.NewViaPair(0, 1)
	require.NoError(t, err)

	geoms := []artwork.Geom{
		artwork.NewTrace("top", pt(0, 0), pt(5, 0), 0.3, 0),
		artwork.NewVia("via", pt(5, 0), 0.4, vp),
		artwork.NewTrace("bottom", pt(5, 0), pt(5, 8), 0.3, 1),
		artwork.NewTrace("inner", pt(5, 0), pt(9, 0), 0.3, 2), // passes under the via on an unconnected layer
	}
	p := build(t, &Builder{}, geoms)

	assert.Equal(t, 2, p.Len())
	net, ok := p.NetFor("top")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"top", "via", "bottom"}, net.Members())
	assert.False(t, net.Contains("inner"))
	assert.Greater(t, p.Stats.LayerPruned, 0)
}

func TestBuild_AirwireJoinsPolygons(t *testing.T) {
	geoms := []artwork.Geom{
		artwork.NewPolygon("left", 0, pt(0, 0), pt(4, 0), pt(4, 4), pt(0, 4)),
		artwork.NewPolygon("right", 1, pt(10, 0), pt(14, 0), pt(14, 4), pt(10, 4)),
		artwork.NewAirwire("aw", pt(2, 2), 0, pt(12, 2), 1),
	}
	p := build(t, &Builder{}, geoms)
	assert.Equal(t, 1, p.Len())

	// Tagged with the wrong layer at one end, the airwire only reaches one polygon.
	geoms[2] = artwork.NewAirwire("aw", pt(2, 2), 0, pt(12, 2), 0)
	p = build(t, &Builder{}, geoms)
	assert.Equal(t, 2, p.Len())
}

func TestBuild_CancelMidway(t *testing.T) {
	// Identical outlines stacked on 500 distinct layers never connect.
	geoms := make([]artwork.Geom, 500)
	for i := range geoms {
		geoms[i] = artwork.NewTrace(fmt.Sprintf("t%d", i), pt(0, 0), pt(1, 0), 0.5, artwork.LayerID(i))
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var calls []int
			progress := func(current, total int) error {
				assert.Equal(t, 500, total)
				calls = append(calls, current)
				if current == 250 {
					return Cancel
				}
				return nil
			}

			p, err := (&Builder{Workers: workers}).Build(context.Background(), geoms, progress)
			assert.Nil(t, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCancelled))
			assert.True(t, errors.Is(err, Cancel))

			require.Len(t, calls, 250)
			for i, c := range calls {
				assert.Equal(t, i+1, c, "progress must be monotonic")
			}
		})
	}

	// Uncancelled, every trace is its own net.
	p := build(t, &Builder{}, geoms)
	assert.Equal(t, 500, p.Len())
	assert.Equal(t, 0, p.Stats.Intersections)
	assert.Equal(t, 500*499/2, p.Stats.LayerPruned)
}

func TestBuild_ContextCancelled(t *testing.T) {
	geoms := []artwork.Geom{
		artwork.NewTrace("a", pt(0, 0), pt(1, 0), 0.1, 0),
		artwork.NewTrace("b", pt(5, 0), pt(6, 0), 0.1, 0),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := (&Builder{}).Build(ctx, geoms, nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	p, err = (&Builder{}).Build(ctx, geoms, func(current, total int) error {
		if current == 1 {
			cancel()
		}
		return nil
	})
	assert.Nil(t, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_RejectsBadIDs(t *testing.T) {
	_, err := (&Builder{}).Build(context.Background(), []artwork.Geom{
		artwork.NewTrace("a", pt(0, 0), pt(1, 0), 0.1, 0),
		artwork.NewTrace("a", pt(5, 0), pt(6, 0), 0.1, 0),
	}, nil)
	assert.ErrorContains(t, err, "duplicate")

	_, err = (&Builder{}).Build(context.Background(), []artwork.Geom{
		artwork.NewTrace("", pt(0, 0), pt(1, 0), 0.1, 0),
	}, nil)
	assert.Error(t, err)
}

func TestBuild_Empty(t *testing.T) {
	called := false
	p, err := (&Builder{Workers: 2}).Build(context.Background(), nil, func(int, int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.False(t, called)
}

func TestPartition_SameMembership(t *testing.T) {
	geoms := []artwork.Geom{
		artwork.NewTrace("a", pt(0, 0), pt(10, 0), 0.2, 0),
		artwork.NewTrace("b", pt(10, 0), pt(10, 10), 0.2, 0),
		artwork.NewTrace("c", pt(20, 0), pt(30, 0), 0.2, 0),
	}
	joined := build(t, &Builder{}, geoms)

	geoms[1] = artwork.NewTrace("b", pt(12, 0), pt(12, 10), 0.2, 0)
	split := build(t, &Builder{}, geoms)

	assert.False(t, joined.SameMembership(split))
	assert.Equal(t, 3, split.Len())

	var empty *Partition
	assert.True(t, empty.SameMembership(nil))
	assert.False(t, empty.SameMembership(joined))
	_, ok := empty.NetFor("a")
	assert.False(t, ok)

	net, ok := joined.NetFor("a")
	require.True(t, ok)
	byID, ok := joined.NetByID(net.ID)
	require.True(t, ok)
	assert.Same(t, net, byID)
}
