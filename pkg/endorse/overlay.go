package endorse

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// OverlayKind is the fixed drawing order: signature first, seal second.
type OverlayKind string

const (
	OverlaySignature OverlayKind = "signature"
	OverlaySeal      OverlayKind = "seal"
)

// Overlay is one image to burn onto the target page.
type Overlay struct {
	Kind      OverlayKind
	Placement Placement
	Image     []byte
}

// PageInfo describes the resolved target page of an apply call.
type PageInfo struct {
	// Number is the effective 1-based page, after clamping.
	Number int
	Size   PageSize
}

// ResolvePage loads the document and returns the target page and its
// native size. An out-of-range page number clamps to page 1 rather than
// erroring, documents re-uploaded with fewer pages than the editor saw
// should still sign.
func ResolvePage(pdf []byte, pageNumber int) (PageInfo, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return PageInfo{}, fmt.Errorf("failed to parse pdf: %w", err)
	}

	if pageNumber < 1 || pageNumber > ctx.PageCount {
		pageNumber = 1
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return PageInfo{}, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if len(dims) < pageNumber {
		return PageInfo{}, fmt.Errorf("pdf reports %d pages but %d dimension entries", ctx.PageCount, len(dims))
	}

	dim := dims[pageNumber-1]
	return PageInfo{
		Number: pageNumber,
		Size:   PageSize{Width: dim.Width, Height: dim.Height},
	}, nil
}

// ApplyOverlays draws the given overlays onto one page of the document
// and returns the new document bytes. Overlays are drawn sequentially in
// slice order against a single in-memory document, never concurrently.
// Source bytes are left untouched; any failure returns before output
// exists, there is no partially stamped result.
func ApplyOverlays(pdf []byte, pageNumber int, render *RenderSize, overlays []Overlay) ([]byte, error) {
	page, err := ResolvePage(pdf, pageNumber)
	if err != nil {
		return nil, err
	}

	current := pdf
	for _, overlay := range overlays {
		rect := MapPlacement(overlay.Placement, render, page.Size)

		stamp, err := renderOverlayPNG(overlay.Image, rect)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare %s overlay: %w", overlay.Kind, err)
		}

		current, err = stampImage(current, page.Number, stamp, rect)
		if err != nil {
			return nil, fmt.Errorf("failed to draw %s overlay: %w", overlay.Kind, err)
		}
	}

	return current, nil
}

// stampImage draws pre-sized PNG bytes with their bottom-left corner at
// the rect origin. The stamp was resized to the rect already, so an
// absolute scale of 1 maps one pixel onto one point.
func stampImage(pdf []byte, pageNumber int, stamp []byte, rect Rect) ([]byte, error) {
	desc := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:1 abs, rot:0", rect.X, rect.Y)

	wm, err := api.ImageWatermarkForReader(bytes.NewReader(stamp), desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build image watermark: %w", err)
	}

	selectedPages := []string{strconv.Itoa(pageNumber)}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, selectedPages, wm, model.NewDefaultConfiguration()); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
