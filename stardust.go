package stardust

import "github.com/hajimehoshi/ebiten/v2"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to a Surface.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default particle color.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns c with its alpha replaced by a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is a float rectangle in canvas or field pixels, Y pointing down.
// Particle footprints are Rects; the compositor snaps them to DirtyRects.
type Rect struct {
	X, Y, Width, Height float64
}

// Scale multiplies every coordinate by s, mapping field space onto a
// canvas backed at scale s.
func (r Rect) Scale(s float64) Rect {
	return Rect{X: r.X * s, Y: r.Y * s, Width: r.Width * s, Height: r.Height * s}
}

// Intersects reports whether r and o share any point, edges included, so a
// halo that just touches a clip region is still drawn.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// Range is a general-purpose min/max range used by effect recipes and
// emitters.
type Range struct {
	Min, Max float64
}

// BlendMode is how a layer lands on the canvas beneath it.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // alpha over
	BlendAdd                     // additive glow
	BlendScreen                  // brightens without blowing out to white
)

var screenBlend = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// EbitenBlend maps b onto ebiten's blend state. Unknown modes draw normally.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendScreen:
		return screenBlend
	}
	return ebiten.BlendSourceOver
}

// Container describes where an effect renders: an identifier plus a
// rectangle in screen pixels. It is a sink description only; the engine
// never reads animation state back out of it.
type Container struct {
	ID     string
	X, Y   int
	Width  int
	Height int
}
