package stardust

import (
	"slices"
	"testing"
)

func TestNewDirtyRect(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h float64
		want       DirtyRect
	}{
		{"integral", 1, 2, 3, 4, DirtyRect{1, 2, 3, 4}},
		{"floor origin ceil size", 1.5, 2.7, 3.2, 0.1, DirtyRect{1, 2, 4, 1}},
		{"negative origin", -0.5, -3.2, 1, 1, DirtyRect{-1, -4, 1, 1}},
		{"negative size", 0, 0, -5, 2, DirtyRect{0, 0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewDirtyRect(tt.x, tt.y, tt.w, tt.h); got != tt.want {
				t.Errorf("NewDirtyRect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDirtyRectOverlaps(t *testing.T) {
	base := DirtyRect{0, 0, 10, 10}
	tests := []struct {
		name  string
		other DirtyRect
		want  bool
	}{
		{"inside", DirtyRect{2, 2, 2, 2}, true},
		{"partial", DirtyRect{5, 5, 10, 10}, true},
		{"touching right edge", DirtyRect{10, 0, 5, 5}, true},
		{"touching bottom edge", DirtyRect{0, 10, 5, 5}, true},
		{"gap right", DirtyRect{11, 0, 5, 5}, false},
		{"gap above", DirtyRect{0, -6, 5, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("reverse Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirtyRectUnionIntersect(t *testing.T) {
	a := DirtyRect{0, 0, 10, 10}
	b := DirtyRect{5, -5, 10, 10}
	if got, want := a.Union(b), (DirtyRect{0, -5, 15, 15}); got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
	if got, want := a.Intersect(b), (DirtyRect{5, 0, 5, 5}); got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}
	if got := a.Intersect(DirtyRect{20, 20, 1, 1}); !got.Empty() {
		t.Errorf("disjoint Intersect = %+v, want empty", got)
	}
	if got := a.Intersect(DirtyRect{10, 0, 5, 5}); !got.Empty() {
		t.Errorf("edge Intersect = %+v, want empty", got)
	}
}

func TestBoundingRect(t *testing.T) {
	if _, ok := BoundingRect(nil); ok {
		t.Error("BoundingRect(nil) reported ok")
	}
	got, ok := BoundingRect([]DirtyRect{{0, 0, 1, 1}, {10, 20, 5, 5}, {-3, 4, 1, 1}})
	if !ok || got != (DirtyRect{-3, 0, 18, 25}) {
		t.Errorf("BoundingRect = %+v, %v", got, ok)
	}
}

func TestMergeRects(t *testing.T) {
	spaced := func(n int) []DirtyRect {
		var rs []DirtyRect
		for i := 0; i < n; i++ {
			rs = append(rs, DirtyRect{i * 20, 0, 5, 5})
		}
		return rs
	}

	tests := []struct {
		name string
		in   []DirtyRect
		want []DirtyRect
	}{
		{"empty", nil, nil},
		{"single", []DirtyRect{{1, 2, 3, 4}}, []DirtyRect{{1, 2, 3, 4}}},
		{"overlapping pair", []DirtyRect{{5, 5, 10, 10}, {0, 0, 10, 10}}, []DirtyRect{{0, 0, 15, 15}}},
		{"disjoint pair", []DirtyRect{{50, 0, 5, 5}, {0, 0, 5, 5}}, []DirtyRect{{0, 0, 5, 5}, {50, 0, 5, 5}}},
		{"ten disjoint stay apart", spaced(10), spaced(10)},
		{"eleven disjoint collapse", spaced(11), []DirtyRect{{0, 0, 205, 5}}},
		{
			// The bar joins the top square after the bottom square was
			// already placed; a second pass folds them together.
			"chain needs a second pass",
			[]DirtyRect{{0, 0, 5, 5}, {0, 20, 5, 5}, {3, 0, 2, 25}},
			[]DirtyRect{{0, 0, 5, 25}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeRects(tt.in, DefaultMergeThreshold)
			if !slices.Equal(got, tt.want) {
				t.Errorf("mergeRects = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeRectsResultDisjoint(t *testing.T) {
	in := []DirtyRect{
		{0, 0, 4, 4}, {30, 30, 4, 4}, {3, 3, 4, 4}, {60, 0, 4, 4},
		{6, 6, 30, 2}, {61, 2, 1, 40}, {90, 90, 2, 2},
	}
	got := mergeRects(in, DefaultMergeThreshold)
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if got[i].Overlaps(got[j]) {
				t.Errorf("merged %+v and %+v still overlap", got[i], got[j])
			}
		}
	}
	for _, r := range in {
		covered := false
		for _, m := range got {
			if m.Union(r) == m {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("input %+v not covered by %+v", r, got)
		}
	}
}

func TestMergeRectsDoesNotMutateInput(t *testing.T) {
	in := []DirtyRect{{5, 5, 10, 10}, {0, 0, 10, 10}}
	orig := slices.Clone(in)
	mergeRects(in, DefaultMergeThreshold)
	if !slices.Equal(in, orig) {
		t.Errorf("input mutated: %+v", in)
	}
}
