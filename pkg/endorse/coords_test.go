package endorse

import (
	"math"
	"testing"
)

func rectAlmostEqual(a, b Rect) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps &&
		math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Width-b.Width) < eps &&
		math.Abs(a.Height-b.Height) < eps
}

func TestMapPlacement(t *testing.T) {
	a4 := PageSize{Width: 595.28, Height: 841.89}

	tests := []struct {
		name      string
		placement Placement
		render    *RenderSize
		page      PageSize
		expected  Rect
	}{
		{
			name:      "render equals page size",
			placement: Placement{X: 100, Y: 50, Width: 200, Height: 80},
			render:    &RenderSize{Width: 595.28, Height: 841.89},
			page:      a4,
			expected:  Rect{X: 100, Y: 841.89 - 50 - 80, Width: 200, Height: 80},
		},
		{
			name:      "render at double page size halves output",
			placement: Placement{X: 100, Y: 50, Width: 200, Height: 80},
			render:    &RenderSize{Width: 1200, Height: 1600},
			page:      PageSize{Width: 600, Height: 800},
			expected:  Rect{X: 50, Y: 800 - (50+80)*0.5, Width: 100, Height: 40},
		},
		{
			name:      "nil render dimensions default to scale 1",
			placement: Placement{X: 10, Y: 20, Width: 30, Height: 40},
			render:    nil,
			page:      PageSize{Width: 600, Height: 800},
			expected:  Rect{X: 10, Y: 800 - 60, Width: 30, Height: 40},
		},
		{
			name:      "non-uniform scale",
			placement: Placement{X: 50, Y: 100, Width: 100, Height: 50},
			render:    &RenderSize{Width: 1000, Height: 500},
			page:      PageSize{Width: 500, Height: 1000},
			expected:  Rect{X: 25, Y: 1000 - (100+50)*2, Width: 50, Height: 100},
		},
		{
			name:      "zero size placement passes through",
			placement: Placement{X: 5, Y: 5, Width: 0, Height: 0},
			render:    &RenderSize{Width: 600, Height: 800},
			page:      PageSize{Width: 600, Height: 800},
			expected:  Rect{X: 5, Y: 795, Width: 0, Height: 0},
		},
		{
			name:      "negative size passes through scaled",
			placement: Placement{X: 10, Y: 10, Width: -20, Height: -10},
			render:    &RenderSize{Width: 300, Height: 400},
			page:      PageSize{Width: 600, Height: 800},
			expected:  Rect{X: 20, Y: 800 - 0, Width: -40, Height: -20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPlacement(tt.placement, tt.render, tt.page)
			if !rectAlmostEqual(got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

// Doubling both render dimensions while holding the page fixed must halve
// every output coordinate.
func TestMapPlacementScaleInvariance(t *testing.T) {
	page := PageSize{Width: 612, Height: 792}
	placement := Placement{X: 120, Y: 90, Width: 240, Height: 60}

	base := MapPlacement(placement, &RenderSize{Width: 612, Height: 792}, page)
	doubled := MapPlacement(placement, &RenderSize{Width: 1224, Height: 1584}, page)

	if math.Abs(doubled.X-base.X/2) > 1e-9 ||
		math.Abs(doubled.Width-base.Width/2) > 1e-9 ||
		math.Abs(doubled.Height-base.Height/2) > 1e-9 {
		t.Errorf("doubling render size should halve x/width/height: base %+v doubled %+v", base, doubled)
	}

	// y is flipped against the page height, so the halving applies to the
	// distance term, not the raw coordinate.
	expectedY := page.Height - (placement.Y+placement.Height)/2
	if math.Abs(doubled.Y-expectedY) > 1e-9 {
		t.Errorf("expected y %f, got %f", expectedY, doubled.Y)
	}
}
