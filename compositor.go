package stardust

// DefaultMergeThreshold is the dirty-rect count above which merging gives up
// on precision and collapses everything into one bounding box.
const DefaultMergeThreshold = 10

// Layer is an offscreen surface composited onto a compositor's main
// surface. A layer is redrawn onto the main surface only while dirty.
type Layer struct {
	ID      string
	Surface Surface
	// X and Y offset the layer on the main surface.
	X, Y  float64
	Blend BlendMode
	dirty bool
}

// Dirty reports whether the layer is waiting to be composited.
func (l *Layer) Dirty() bool {
	return l.dirty
}

// CompositorStats is a snapshot of a Compositor.
type CompositorStats struct {
	DirtyRects     int
	Layers         int
	Width, Height  int
	Frames         int
	RegionsPainted int
}

// Compositor limits canvas work to the regions that changed since the last
// paint. Callers mark dirty rectangles while updating; Paint clears and
// redraws only those rectangles, then forgets them.
type Compositor struct {
	main           Surface
	factory        SurfaceFactory
	dirty          []DirtyRect
	layers         []*Layer
	layerByID      map[string]*Layer
	mergeThreshold int

	frames         int
	regionsPainted int
}

// NewCompositor creates a compositor drawing onto main. Layers are
// allocated with factory; a nil factory allocates ImageSurfaces.
func NewCompositor(main Surface, factory SurfaceFactory) *Compositor {
	if factory == nil {
		factory = NewImageSurfaceFactory()
	}
	return &Compositor{
		main:           main,
		factory:        factory,
		layerByID:      make(map[string]*Layer),
		mergeThreshold: DefaultMergeThreshold,
	}
}

// Main returns the surface the compositor paints onto.
func (c *Compositor) Main() Surface {
	return c.main
}

// SetMergeThreshold changes the collapse threshold. Values below 1 restore
// the default.
func (c *Compositor) SetMergeThreshold(n int) {
	if n < 1 {
		n = DefaultMergeThreshold
	}
	c.mergeThreshold = n
}

// canvasRect is the full main surface.
func (c *Compositor) canvasRect() DirtyRect {
	w, h := c.main.Size()
	return DirtyRect{Width: w, Height: h}
}

// MarkDirty records a region for redraw this frame. The origin is floored
// and the size ceiled to whole pixels.
func (c *Compositor) MarkDirty(x, y, w, h float64) {
	c.dirty = append(c.dirty, NewDirtyRect(x, y, w, h))
}

// MarkRect records an already integral region.
func (c *Compositor) MarkRect(r DirtyRect) {
	c.dirty = append(c.dirty, r)
}

// MarkAllDirty replaces the pending set with the whole canvas.
func (c *Compositor) MarkAllDirty() {
	c.dirty = append(c.dirty[:0], c.canvasRect())
}

// DirtyRects returns the pending rectangles. The slice MUST NOT be mutated.
func (c *Compositor) DirtyRects() []DirtyRect {
	return c.dirty
}

// MergeDirtyRects returns the pending set reduced by the merge policy. The
// pending set itself is left untouched.
func (c *Compositor) MergeDirtyRects() []DirtyRect {
	return mergeRects(c.dirty, c.mergeThreshold)
}

// paintRegions returns the merged rectangles clipped to the canvas, with
// empty results dropped.
func (c *Compositor) paintRegions() []DirtyRect {
	merged := c.MergeDirtyRects()
	bounds := c.canvasRect()
	out := merged[:0]
	for _, r := range merged {
		if clipped := r.Intersect(bounds); !clipped.Empty() {
			out = append(out, clipped)
		}
	}
	return out
}

// ClearDirtyRegions clears the merged dirty regions on the main surface.
func (c *Compositor) ClearDirtyRegions() {
	for _, r := range c.paintRegions() {
		c.main.ClearRect(r)
	}
}

// ClearDirtyRectsList forgets every pending rectangle.
func (c *Compositor) ClearDirtyRectsList() {
	c.dirty = c.dirty[:0]
}

// CreateLayer allocates an offscreen layer. A zero width or height takes
// the main surface's. New layers start dirty. Creating a layer with an
// existing id replaces it.
func (c *Compositor) CreateLayer(id string, w, h int) *Layer {
	cw, ch := c.main.Size()
	if w <= 0 {
		w = cw
	}
	if h <= 0 {
		h = ch
	}
	c.RemoveLayer(id)
	l := &Layer{ID: id, Surface: c.factory(w, h), dirty: true}
	c.layers = append(c.layers, l)
	c.layerByID[id] = l
	return l
}

// Layer returns the layer with the given id, or nil.
func (c *Compositor) Layer(id string) *Layer {
	return c.layerByID[id]
}

// MarkLayerDirty flags a layer for compositing on the next paint.
func (c *Compositor) MarkLayerDirty(id string) {
	if l := c.layerByID[id]; l != nil {
		l.dirty = true
	}
}

// ClearLayer clears a layer's pixels and marks it dirty.
func (c *Compositor) ClearLayer(id string) {
	if l := c.layerByID[id]; l != nil {
		l.Surface.Clear()
		l.dirty = true
	}
}

// RemoveLayer deletes a layer. Its pixels already on the main surface are
// invalidated.
func (c *Compositor) RemoveLayer(id string) {
	l := c.layerByID[id]
	if l == nil {
		return
	}
	delete(c.layerByID, id)
	for i, other := range c.layers {
		if other == l {
			c.layers = append(c.layers[:i], c.layers[i+1:]...)
			break
		}
	}
	if d, ok := l.Surface.(interface{ Dispose() }); ok {
		d.Dispose()
	}
	c.MarkAllDirty()
}

// CompositeLayers draws every dirty layer onto the main surface, in
// creation order, and marks it clean. Clean layers are skipped.
func (c *Compositor) CompositeLayers() {
	for _, l := range c.layers {
		if !l.dirty {
			continue
		}
		c.main.DrawSurface(l.Surface, l.X, l.Y, l.Blend)
		l.dirty = false
	}
}

func (c *Compositor) hasDirtyLayer() bool {
	for _, l := range c.layers {
		if l.dirty {
			return true
		}
	}
	return false
}

// Paint runs one frame of partial redraw:
//
//  1. a dirty layer invalidates the whole canvas;
//  2. each merged region is cleared and the clean layers are restored
//     inside it;
//  3. dirty layers are composited;
//  4. draw is called once per region with a surface clipped to it;
//  5. the pending set is emptied.
//
// Nothing outside the marked regions is touched.
func (c *Compositor) Paint(draw func(dst Surface, clip DirtyRect)) {
	if c.hasDirtyLayer() {
		c.MarkAllDirty()
	}
	regions := c.paintRegions()

	for _, r := range regions {
		c.main.ClearRect(r)
		dst := c.main.Region(r)
		for _, l := range c.layers {
			if !l.dirty {
				dst.DrawSurface(l.Surface, l.X, l.Y, l.Blend)
			}
		}
	}

	c.CompositeLayers()

	if draw != nil {
		for _, r := range regions {
			draw(c.main.Region(r), r)
		}
	}

	c.frames++
	c.regionsPainted += len(regions)
	c.ClearDirtyRectsList()
}

// Stats returns a snapshot of the compositor.
func (c *Compositor) Stats() CompositorStats {
	w, h := c.main.Size()
	return CompositorStats{
		DirtyRects:     len(c.dirty),
		Layers:         len(c.layers),
		Width:          w,
		Height:         h,
		Frames:         c.frames,
		RegionsPainted: c.regionsPainted,
	}
}

// Reset drops every pending rect and layer.
func (c *Compositor) Reset() {
	c.dirty = c.dirty[:0]
	for len(c.layers) > 0 {
		c.RemoveLayer(c.layers[0].ID)
	}
	c.dirty = c.dirty[:0]
	c.frames = 0
	c.regionsPainted = 0
}
