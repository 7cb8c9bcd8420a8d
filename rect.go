package stardust

import (
	"math"
	"slices"
)

// DirtyRect is a region of a canvas, in integral pixels, that needs to be
// redrawn this frame. Width and Height are never negative.
type DirtyRect struct {
	X, Y, Width, Height int
}

// NewDirtyRect builds the integral rect covering the given float region:
// the origin is floored and the size ceiled. Negative sizes become zero.
func NewDirtyRect(x, y, w, h float64) DirtyRect {
	return DirtyRect{
		X:      int(math.Floor(x)),
		Y:      int(math.Floor(y)),
		Width:  max(0, int(math.Ceil(w))),
		Height: max(0, int(math.Ceil(h))),
	}
}

// Right returns X + Width.
func (r DirtyRect) Right() int {
	return r.X + r.Width
}

// Bottom returns Y + Height.
func (r DirtyRect) Bottom() int {
	return r.Y + r.Height
}

// Empty reports whether the rect covers no pixels.
func (r DirtyRect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// Overlaps reports whether r and o overlap or touch on any side.
func (r DirtyRect) Overlaps(o DirtyRect) bool {
	return !(r.Right() < o.X ||
		o.Right() < r.X ||
		r.Bottom() < o.Y ||
		o.Bottom() < r.Y)
}

// Union returns the bounding rect of r and o.
func (r DirtyRect) Union(o DirtyRect) DirtyRect {
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	return DirtyRect{
		X:      x,
		Y:      y,
		Width:  max(r.Right(), o.Right()) - x,
		Height: max(r.Bottom(), o.Bottom()) - y,
	}
}

// Intersect returns the overlap of r and o, or an empty rect.
func (r DirtyRect) Intersect(o DirtyRect) DirtyRect {
	x := max(r.X, o.X)
	y := max(r.Y, o.Y)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= x || bottom <= y {
		return DirtyRect{}
	}
	return DirtyRect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// BoundingRect returns the bounding box of rects. It reports false for an
// empty input.
func BoundingRect(rects []DirtyRect) (DirtyRect, bool) {
	if len(rects) == 0 {
		return DirtyRect{}, false
	}
	b := rects[0]
	for _, r := range rects[1:] {
		b = b.Union(r)
	}
	return b, true
}

// mergeRects reduces rects to a smaller covering set. Above threshold
// entries everything collapses to one bounding box; otherwise overlapping
// entries are merged, in x order, until no two results overlap.
func mergeRects(rects []DirtyRect, threshold int) []DirtyRect {
	switch {
	case len(rects) == 0:
		return nil
	case len(rects) == 1:
		return []DirtyRect{rects[0]}
	case len(rects) > threshold:
		b, _ := BoundingRect(rects)
		return []DirtyRect{b}
	}

	sorted := slices.Clone(rects)
	slices.SortStableFunc(sorted, func(a, b DirtyRect) int {
		return a.X - b.X
	})

	merged := make([]DirtyRect, 0, len(sorted))
	for _, cur := range sorted {
		merged = mergeInto(merged, cur)
	}

	// A grown entry can reach a neighbour it did not touch before.
	for {
		before := len(merged)
		next := make([]DirtyRect, 0, before)
		for _, cur := range merged {
			next = mergeInto(next, cur)
		}
		merged = next
		if len(merged) == before {
			return merged
		}
	}
}

// mergeInto merges cur into the first overlapping entry of merged, or
// appends it.
func mergeInto(merged []DirtyRect, cur DirtyRect) []DirtyRect {
	for i := range merged {
		if merged[i].Overlaps(cur) {
			merged[i] = merged[i].Union(cur)
			return merged
		}
	}
	return append(merged, cur)
}
