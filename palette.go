package stardust

import (
	"math"
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is a color ramp. Stops are evenly spaced over [0, 1] and blended in
// HCL space so ramps between saturated hues stay vivid in the middle.
type Palette []Color

// At samples the ramp at t, clamped to [0, 1]. An empty palette is white.
func (p Palette) At(t float64) Color {
	switch len(p) {
	case 0:
		return ColorWhite
	case 1:
		return p[0]
	}
	t = clamp(t, 0, 1)
	seg := t * float64(len(p)-1)
	i := int(math.Floor(seg))
	if i >= len(p)-1 {
		return p[len(p)-1]
	}
	frac := seg - float64(i)
	a, b := p[i], p[i+1]
	c := a.colorful().BlendHcl(b.colorful(), frac).Clamped()
	return Color{R: c.R, G: c.G, B: c.B, A: lerp(a.A, b.A, frac)}
}

// Pick returns one of the stops at random.
func (p Palette) Pick() Color {
	if len(p) == 0 {
		return ColorWhite
	}
	return p[rand.IntN(len(p))]
}

// HSL builds an opaque color from hue in degrees, saturation and lightness in
// [0, 1].
func HSL(h, s, l float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, s, l).Clamped()
	return Color{R: c.R, G: c.G, B: c.B, A: 1}
}

// Hex parses a "#rrggbb" color. Malformed input yields white.
func Hex(s string) Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return ColorWhite
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}
}

// HueRamp builds a palette of n stops sweeping hue from h0 to h1 degrees.
func HueRamp(h0, h1, s, l float64, n int) Palette {
	if n < 2 {
		n = 2
	}
	p := make(Palette, n)
	for i := range p {
		p[i] = HSL(lerp(h0, h1, float64(i)/float64(n-1)), s, l)
	}
	return p
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}
