// Package colorutil provides shared color utilities for layer display.
package colorutil

import (
	"image/color"
	"math"
)

// Common layer colors, in the order layers are assigned them.
var (
	Red     = color.RGBA{R: 200, G: 50, B: 50, A: 255}
	Blue    = color.RGBA{R: 50, G: 50, B: 200, A: 255}
	Green   = color.RGBA{R: 40, G: 160, B: 60, A: 255}
	Yellow  = color.RGBA{R: 210, G: 190, B: 40, A: 255}
	Cyan    = color.RGBA{R: 0, G: 180, B: 200, A: 255}
	Magenta = color.RGBA{R: 190, G: 50, B: 190, A: 255}
)

var layerPalette = []color.RGBA{Red, Blue, Green, Yellow, Cyan, Magenta}

// LayerColor returns the display color for the layer at position i. The
// first few positions use the fixed palette; later ones step around the
// hue wheel by the golden angle so neighbours stay distinguishable.
func LayerColor(i int) color.RGBA {
	if i < 0 {
		i = 0
	}
	if i < len(layerPalette) {
		return layerPalette[i]
	}
	h := math.Mod(float64(i-len(layerPalette))*137.508+15, 360)
	return HSVToRGB(h, 0.65, 0.8)
}

// RGBToHSV converts a color to hue (0-360), saturation and value (0-1).
func RGBToHSV(c color.RGBA) (h, s, v float64) {
	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC
	if maxC > 0 {
		s = diff / maxC
	}

	switch {
	case diff == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/diff, 6)
	case maxC == g:
		h = 60 * ((b-r)/diff + 2)
	default:
		h = 60 * ((r-g)/diff + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// HSVToRGB converts hue (degrees), saturation and value (0-1) to an opaque color.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(f float64) uint8 { return uint8(math.Round((f + m) * 255)) }
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}
