package stardust

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Surface is a drawing target: an effect canvas, an offscreen layer, or a
// clipped region of either. All coordinates are in the surface's canvas
// space; a region keeps its parent's coordinates and only clips.
type Surface interface {
	// Size returns the surface's width and height in pixels.
	Size() (w, h int)
	// Clear fills the whole surface with transparent black.
	Clear()
	// ClearRect fills r with transparent black.
	ClearRect(r DirtyRect)
	// Region returns a surface that draws into this one, clipped to r.
	Region(r DirtyRect) Surface
	// DrawSurface blits src with its top-left at (x, y).
	DrawSurface(src Surface, x, y float64, blend BlendMode)
	// FillCircle draws a filled, antialiased circle.
	FillCircle(cx, cy, r float64, c Color)
	// StrokeCircle draws an antialiased circle outline.
	StrokeCircle(cx, cy, r, width float64, c Color)
}

// SurfaceFactory allocates a new surface of the given size.
type SurfaceFactory func(w, h int) Surface

// ImageSurface is a Surface backed by an *ebiten.Image. Canvases and layers
// are persistent: unlike pooled render targets they keep their pixels
// between frames, which is what makes partial redraws possible.
type ImageSurface struct {
	image *ebiten.Image
	w, h  int
}

// NewImageSurface creates a persistent offscreen canvas of the given size.
func NewImageSurface(w, h int) *ImageSurface {
	w, h = max(w, 1), max(h, 1)
	return &ImageSurface{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// NewImageSurfaceFactory is the SurfaceFactory used by default.
func NewImageSurfaceFactory() SurfaceFactory {
	return func(w, h int) Surface {
		return NewImageSurface(w, h)
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (s *ImageSurface) Image() *ebiten.Image {
	return s.image
}

// Size returns the surface dimensions.
func (s *ImageSurface) Size() (int, int) {
	return s.w, s.h
}

// Clear fills the surface with transparent black.
func (s *ImageSurface) Clear() {
	if s.image == nil {
		return
	}
	s.image.Clear()
}

// ClearRect fills r with transparent black.
func (s *ImageSurface) ClearRect(r DirtyRect) {
	if s.image == nil || r.Empty() {
		return
	}
	s.sub(r).Clear()
}

// Region returns a clipped view sharing this surface's pixels.
func (s *ImageSurface) Region(r DirtyRect) Surface {
	if s.image == nil {
		return s
	}
	return &ImageSurface{image: s.sub(r), w: r.Width, h: r.Height}
}

func (s *ImageSurface) sub(r DirtyRect) *ebiten.Image {
	return s.image.SubImage(image.Rect(r.X, r.Y, r.Right(), r.Bottom())).(*ebiten.Image)
}

// DrawSurface draws src at (x, y). Sources that are not image-backed are
// ignored.
func (s *ImageSurface) DrawSurface(src Surface, x, y float64, blend BlendMode) {
	is, ok := src.(*ImageSurface)
	if !ok || is.image == nil || s.image == nil {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(x, y)
	op.Blend = blend.EbitenBlend()
	s.image.DrawImage(is.image, &op)
}

// DrawScaled draws the whole surface onto dst at (x, y), scaled by scale.
// It is how low-resolution canvases reach the screen at full size.
func (s *ImageSurface) DrawScaled(dst *ebiten.Image, x, y, scale float64) {
	if s.image == nil {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(s.image, &op)
}

// FillCircle draws a filled circle.
func (s *ImageSurface) FillCircle(cx, cy, r float64, c Color) {
	if s.image == nil || r <= 0 || c.A <= 0 {
		return
	}
	vector.FillCircle(s.image, float32(cx), float32(cy), float32(r), c.toRGBA(), true)
}

// StrokeCircle draws a circle outline.
func (s *ImageSurface) StrokeCircle(cx, cy, r, width float64, c Color) {
	if s.image == nil || r <= 0 || c.A <= 0 {
		return
	}
	vector.StrokeCircle(s.image, float32(cx), float32(cy), float32(r), float32(width), c.toRGBA(), true)
}

// Resize deallocates the old image and creates a new one at the given dimensions.
func (s *ImageSurface) Resize(width, height int) {
	if s.image != nil {
		s.image.Deallocate()
	}
	s.w, s.h = max(width, 1), max(height, 1)
	s.image = ebiten.NewImage(s.w, s.h)
}

// Dispose deallocates the underlying image. The surface should not be used
// after calling Dispose.
func (s *ImageSurface) Dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp(c.R*c.A, 0, 1) * 255),
		G: uint8(clamp(c.G*c.A, 0, 1) * 255),
		B: uint8(clamp(c.B*c.A, 0, 1) * 255),
		A: uint8(clamp(c.A, 0, 1) * 255),
	}
}
