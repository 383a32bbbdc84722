package artwork

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains_ImpliesBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	for i := 0; i < 300; i++ {
		g := randomGeom(rng, Kind(rng.Intn(int(KindAirwire))))
		box := g.Bounds()
		for j := 0; j < 50; j++ {
			p := pt(rng.Float64()*30-5, rng.Float64()*30-5)
			if Contains(g, p) {
				assert.True(t, box.Contains(p), "%v contains %v outside its bounds %v", g, p, box)
			}
		}
	}
}

func TestContains_AgreesWithDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 300; i++ {
		g := randomGeom(rng, Kind(rng.Intn(int(KindAirwire))))
		layer, ok := LayerFor(g)
		if !ok {
			layer = 0
		}
		for j := 0; j < 50; j++ {
			p := pt(rng.Float64()*20, rng.Float64()*20)
			if !Contains(g, p) {
				continue
			}
			probe := NewVia("probe", p, 1e-9, ViaPair{layer, layer})
			assert.True(t, Intersects(g, probe), "%v contains %v but a probe there does not touch it", g, p)
		}
	}
}

func TestContains_Trace(t *testing.T) {
	tr := NewTrace("t", pt(0, 0), pt(10, 0), 2, 0)

	assert.True(t, Contains(tr, pt(5, 0)))
	assert.True(t, Contains(tr, pt(5, 0.9)))
	assert.True(t, Contains(tr, pt(-0.5, 0.5)), "rounded end cap")
	assert.False(t, Contains(tr, pt(5, 1)), "boundary is outside")
	assert.False(t, Contains(tr, pt(-0.9, 0.9)), "square corner of the box is outside the cap")
}

func TestContains_Via(t *testing.T) {
	v := NewVia("v", pt(3, 3), 1, ViaPair{0, 1})

	assert.True(t, Contains(v, pt(3, 3)))
	assert.True(t, Contains(v, pt(4, 3)), "boundary is inside")
	assert.False(t, Contains(v, pt(3.8, 3.8)))
}

func TestContains_RotatedPad(t *testing.T) {
	// A 4x2 rectangle rotated a quarter turn occupies x in [-1,1], y in [-2,2].
	pad := &Pad{ID: "p", Center: pt(0, 0), Width: 4, Length: 2, Theta: math.Pi / 2, Outline: PadRect}

	assert.True(t, Contains(pad, pt(0, 1.9)))
	assert.True(t, Contains(pad, pt(0.9, -1.9)))
	assert.False(t, Contains(pad, pt(1.9, 0)))

	box := pad.Bounds()
	assert.InDelta(t, -1.0, box.X, 1e-9)
	assert.InDelta(t, 2.0, box.Width, 1e-9)
	assert.InDelta(t, 4.0, box.Height, 1e-9)

	// Obround of the same size loses the corners.
	pad.Outline = PadObround
	assert.True(t, Contains(pad, pt(0, 1.9)))
	assert.False(t, Contains(pad, pt(0.9, -1.9)))
}

func TestContains_CircularPad(t *testing.T) {
	pad := &Pad{ID: "p", Center: pt(5, 5), Width: 2, Length: 2, Theta: 1.3}

	assert.True(t, pad.IsCircular())
	assert.True(t, Contains(pad, pt(5.5, 5.5)))
	assert.False(t, Contains(pad, pt(5.9, 5.9)))
}

func TestContains_Polygon(t *testing.T) {
	poly := NewPolygon("poly", 0, pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10))

	assert.True(t, Contains(poly, pt(5, 5)))
	assert.True(t, Contains(poly, pt(10, 5)), "edge counts as inside")
	assert.False(t, Contains(poly, pt(11, 5)))

	// Concave notch
	notched := NewPolygon("notched", 0, pt(0, 0), pt(10, 0), pt(10, 10), pt(5, 5), pt(0, 10))
	assert.False(t, Contains(notched, pt(5, 8)))
	assert.True(t, Contains(notched, pt(2, 6)))
}

func TestContains_Airwire(t *testing.T) {
	aw := NewAirwire("aw", pt(0, 0), 0, pt(10, 10), 1)

	assert.True(t, Contains(aw, pt(5, 5)))
	assert.False(t, Contains(aw, pt(5, 6)))
}
