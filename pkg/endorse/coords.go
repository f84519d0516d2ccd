package endorse

// Placement is a rectangle positioned by its top-left corner in render
// space: the pixel coordinate system of the PDF page as the client
// displayed it, origin top-left, y growing downward.
type Placement struct {
	X      float64 `json:"x" form:"x"`
	Y      float64 `json:"y" form:"y"`
	Width  float64 `json:"width" form:"width"`
	Height float64 `json:"height" form:"height"`
}

// RenderSize is the pixel size at which the client rendered the page when
// the user positioned the overlay.
type RenderSize struct {
	Width  float64 `json:"width" form:"width"`
	Height float64 `json:"height" form:"height"`
}

// PageSize is the native size of a PDF page in points, origin bottom-left,
// y growing upward.
type PageSize struct {
	Width  float64
	Height float64
}

// Rect is a rectangle in PDF point space positioned by its bottom-left
// corner, the anchor pdf drawing primitives expect.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MapPlacement converts a render-space placement into PDF point space for
// the given page. Scale factors are derived from the page/render size
// ratio; a nil render size means the placement is already in point space
// and both scales default to 1. The vertical axis is flipped and the
// output anchors the rectangle's bottom edge, since the placement is
// specified by its top-left corner while the PDF draws images from the
// bottom-left corner.
//
// Pure arithmetic, no validation: degenerate widths and heights pass
// through scaled, the caller owns input sanity.
func MapPlacement(p Placement, render *RenderSize, page PageSize) Rect {
	scaleX, scaleY := 1.0, 1.0
	if render != nil && render.Width != 0 && render.Height != 0 {
		scaleX = page.Width / render.Width
		scaleY = page.Height / render.Height
	}

	return Rect{
		X:      p.X * scaleX,
		Y:      page.Height - ((p.Y + p.Height) * scaleY),
		Width:  p.Width * scaleX,
		Height: p.Height * scaleY,
	}
}
