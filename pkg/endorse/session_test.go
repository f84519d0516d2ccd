package endorse

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func newTestSession(t *testing.T) (*PlacementSession, string) {
	t.Helper()
	s := NewPlacementSession(RenderSize{Width: 800, Height: 1000})
	id, err := s.Add(1, Placement{X: 100, Y: 100, Width: 200, Height: 80}, "")
	if err != nil {
		t.Fatalf("failed to add placement: %v", err)
	}
	return s, id
}

func TestPlacementSessionDrag(t *testing.T) {
	s, id := newTestSession(t)

	if err := s.BeginDrag(id, 150, 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Move(180, 120); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.End()

	got := s.Placements()[0].Rect
	if got.X != 130 || got.Y != 70 {
		t.Errorf("expected position (130, 70), got (%v, %v)", got.X, got.Y)
	}
	if got.Width != 200 || got.Height != 80 {
		t.Errorf("drag must not change size, got %vx%v", got.Width, got.Height)
	}
}

func TestPlacementSessionDragClampsToPage(t *testing.T) {
	s, id := newTestSession(t)

	if err := s.BeginDrag(id, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Move(-500, 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.End()

	got := s.Placements()[0].Rect
	if got.X != 0 {
		t.Errorf("expected x clamped to 0, got %v", got.X)
	}
	if got.Y != 1000-80 {
		t.Errorf("expected y clamped to %v, got %v", 1000-80, got.Y)
	}
}

func TestPlacementSessionResize(t *testing.T) {
	s, id := newTestSession(t)

	if err := s.BeginResize(id, 300, 180); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Move(350, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.End()

	got := s.Placements()[0].Rect
	if got.Width != 250 || got.Height != 100 {
		t.Errorf("expected 250x100, got %vx%v", got.Width, got.Height)
	}

	// shrinking far below zero bottoms out at the minimum size
	if err := s.BeginResize(id, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Move(-1000, -1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.End()

	got = s.Placements()[0].Rect
	if got.Width != MinPlacementSize || got.Height != MinPlacementSize {
		t.Errorf("expected %vx%v, got %vx%v", MinPlacementSize, MinPlacementSize, got.Width, got.Height)
	}
}

func TestPlacementSessionSingleActiveInteraction(t *testing.T) {
	s, id := newTestSession(t)
	other, err := s.Add(1, Placement{X: 400, Y: 400, Width: 100, Height: 50}, "")
	if err != nil {
		t.Fatalf("failed to add placement: %v", err)
	}

	if err := s.BeginDrag(id, 100, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.BeginDrag(other, 400, 400); !errors.Is(err, ErrInteractionActive) {
		t.Errorf("expected ErrInteractionActive, got %v", err)
	}
	if err := s.BeginResize(id, 100, 100); !errors.Is(err, ErrInteractionActive) {
		t.Errorf("expected ErrInteractionActive, got %v", err)
	}

	s.End()
	if err := s.BeginResize(other, 400, 400); err != nil {
		t.Errorf("expected interaction to start after End, got %v", err)
	}
}

func TestPlacementSessionErrors(t *testing.T) {
	s, id := newTestSession(t)

	if err := s.Move(10, 10); !errors.Is(err, ErrNoInteraction) {
		t.Errorf("expected ErrNoInteraction, got %v", err)
	}
	if err := s.BeginDrag("missing", 0, 0); !errors.Is(err, ErrUnknownPlacement) {
		t.Errorf("expected ErrUnknownPlacement, got %v", err)
	}
	if err := s.Remove("missing"); !errors.Is(err, ErrUnknownPlacement) {
		t.Errorf("expected ErrUnknownPlacement, got %v", err)
	}

	// removing the active placement ends the interaction
	if err := s.BeginDrag(id, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Remove(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ActiveID() != "" {
		t.Errorf("expected interaction cleared after removing active placement")
	}
	if len(s.Placements()) != 0 {
		t.Errorf("expected no placements, got %d", len(s.Placements()))
	}
}

func TestRemoveBackground(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255}) // paper white
	img.SetNRGBA(1, 0, color.NRGBA{R: 241, G: 250, B: 245, A: 255}) // near white
	img.SetNRGBA(0, 1, color.NRGBA{R: 240, G: 240, B: 240, A: 255}) // at threshold, kept
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 10, B: 10, A: 255})    // ink

	out := RemoveBackground(img)

	if out.NRGBAAt(0, 0).A != 0 {
		t.Error("pure white should become transparent")
	}
	if out.NRGBAAt(1, 0).A != 0 {
		t.Error("near white should become transparent")
	}
	if out.NRGBAAt(0, 1).A != 255 {
		t.Error("threshold value itself should be kept opaque")
	}
	p := out.NRGBAAt(1, 1)
	if p.A != 255 || p.R != 10 {
		t.Error("ink pixels must be preserved")
	}
}
