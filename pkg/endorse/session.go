package endorse

import (
	"errors"
	"image"
	"image/color"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrInteractionActive = errors.New("another placement interaction is active")
	ErrNoInteraction     = errors.New("no placement interaction in progress")
	ErrUnknownPlacement  = errors.New("unknown placement id")
)

// MinPlacementSize keeps resized rectangles grabbable.
const MinPlacementSize = 16.0

// EditorPlacement is the client-side bookkeeping for one overlay
// rectangle: a placement plus the page it sits on, a local id and the
// drawn bitmap as a data url.
type EditorPlacement struct {
	ID      string    `json:"id"`
	Page    int       `json:"pageNumber"`
	DataURL string    `json:"dataUrl,omitempty"`
	Rect    Placement `json:"rect"`
}

type interactionMode int

const (
	modeIdle interactionMode = iota
	modeDragging
	modeResizing
)

// PlacementSession tracks drag/resize of overlay rectangles over a
// rendered page before submission. At most one placement interacts at a
// time; the mode/activeID pair is the whole interaction state.
type PlacementSession struct {
	render     RenderSize
	placements []EditorPlacement

	mode     interactionMode
	activeID string
	// pointer position when the interaction started
	startX, startY float64
	// placement rect when the interaction started
	origin Placement
}

// NewPlacementSession starts an editing session over a page rendered at
// the given pixel size.
func NewPlacementSession(render RenderSize) *PlacementSession {
	return &PlacementSession{render: render}
}

// Add registers a new placement and returns its generated id.
func (s *PlacementSession) Add(page int, rect Placement, dataURL string) (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}

	s.placements = append(s.placements, EditorPlacement{
		ID:      id,
		Page:    page,
		DataURL: dataURL,
		Rect:    rect,
	})
	return id, nil
}

// Remove drops a placement. Removing the active placement ends the
// interaction as well.
func (s *PlacementSession) Remove(id string) error {
	for i, p := range s.placements {
		if p.ID == id {
			s.placements = append(s.placements[:i], s.placements[i+1:]...)
			if s.activeID == id {
				s.mode = modeIdle
				s.activeID = ""
			}
			return nil
		}
	}
	return ErrUnknownPlacement
}

// BeginDrag starts moving a placement from the given pointer position.
func (s *PlacementSession) BeginDrag(id string, pointerX, pointerY float64) error {
	return s.begin(modeDragging, id, pointerX, pointerY)
}

// BeginResize starts resizing a placement from the given pointer position.
// The pointer is assumed to be on the bottom-right handle.
func (s *PlacementSession) BeginResize(id string, pointerX, pointerY float64) error {
	return s.begin(modeResizing, id, pointerX, pointerY)
}

func (s *PlacementSession) begin(mode interactionMode, id string, pointerX, pointerY float64) error {
	if s.mode != modeIdle {
		return ErrInteractionActive
	}

	p := s.find(id)
	if p == nil {
		return ErrUnknownPlacement
	}

	s.mode = mode
	s.activeID = id
	s.startX = pointerX
	s.startY = pointerY
	s.origin = p.Rect
	return nil
}

// Move recomputes the active placement from the live pointer position and
// the delta against the interaction start. Dragging clamps the rectangle
// inside the rendered page; resizing enforces a minimum size.
func (s *PlacementSession) Move(pointerX, pointerY float64) error {
	if s.mode == modeIdle {
		return ErrNoInteraction
	}

	p := s.find(s.activeID)
	if p == nil {
		// the active placement was removed out from under us
		s.mode = modeIdle
		s.activeID = ""
		return ErrUnknownPlacement
	}

	dx := pointerX - s.startX
	dy := pointerY - s.startY

	switch s.mode {
	case modeDragging:
		p.Rect.X = clamp(s.origin.X+dx, 0, s.render.Width-p.Rect.Width)
		p.Rect.Y = clamp(s.origin.Y+dy, 0, s.render.Height-p.Rect.Height)
	case modeResizing:
		p.Rect.Width = max(s.origin.Width+dx, MinPlacementSize)
		p.Rect.Height = max(s.origin.Height+dy, MinPlacementSize)
	}
	return nil
}

// End finishes the current interaction and returns the session to idle.
func (s *PlacementSession) End() {
	s.mode = modeIdle
	s.activeID = ""
}

// ActiveID returns the placement currently being dragged or resized, or
// "" when idle.
func (s *PlacementSession) ActiveID() string {
	return s.activeID
}

// RenderSize returns the pixel size the page was rendered at, the value
// the applier needs alongside the placements.
func (s *PlacementSession) RenderSize() RenderSize {
	return s.render
}

// Placements returns a copy of the current placements in insertion order.
func (s *PlacementSession) Placements() []EditorPlacement {
	out := make([]EditorPlacement, len(s.placements))
	copy(out, s.placements)
	return out
}

func (s *PlacementSession) find(id string) *EditorPlacement {
	for i := range s.placements {
		if s.placements[i].ID == id {
			return &s.placements[i]
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// whiteThreshold is the per-channel cutoff above which a pixel counts as
// paper background.
const whiteThreshold = 240

// RemoveBackground forces near-white pixels fully transparent so a
// signature drawn on a white canvas overlays the document without a
// paper-colored box around it.
func RemoveBackground(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R > whiteThreshold && c.G > whiteThreshold && c.B > whiteThreshold {
				c.A = 0
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}
