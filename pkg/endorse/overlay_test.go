package endorse

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minimalPDF builds a valid n-page document with the given page size,
// tracking byte offsets for a correct xref table.
func minimalPDF(t *testing.T, pages int, width, height float64) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, 0, pages+3)

	write := func(s string) {
		buf.WriteString(s)
	}
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		write(body)
	}

	write("%PDF-1.4\n")

	object("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	object(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages))

	for i := 0; i < pages; i++ {
		object(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources << >> >>\nendobj\n", i+3, width, height))
	}

	xrefOffset := buf.Len()
	write(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	write("0000000000 65535 f \n")
	for _, off := range offsets {
		write(fmt.Sprintf("%010d 00000 n \n", off))
	}
	write(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset))

	// sanity: the fixture itself must parse
	if _, err := api.ReadValidateAndOptimize(bytes.NewReader(buf.Bytes()), model.NewDefaultConfiguration()); err != nil {
		t.Fatalf("test pdf fixture does not parse: %v", err)
	}

	return buf.Bytes()
}

func pageCount(t *testing.T, pdf []byte) int {
	t.Helper()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("output pdf does not parse: %v", err)
	}
	return ctx.PageCount
}

func TestResolvePage(t *testing.T) {
	pdf := minimalPDF(t, 3, 595.28, 841.89)

	tests := []struct {
		name       string
		pageNumber int
		expected   int
	}{
		{"first page", 1, 1},
		{"middle page", 2, 2},
		{"last page", 3, 3},
		{"out of range clamps to first", 99, 1},
		{"zero clamps to first", 0, 1},
		{"negative clamps to first", -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ResolvePage(pdf, tt.pageNumber)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.Number != tt.expected {
				t.Errorf("expected page %d, got %d", tt.expected, page.Number)
			}
			if page.Size.Width != 595.28 || page.Size.Height != 841.89 {
				t.Errorf("unexpected page size %+v", page.Size)
			}
		})
	}

	t.Run("garbage input", func(t *testing.T) {
		if _, err := ResolvePage([]byte("not a pdf"), 1); err == nil {
			t.Fatal("expected error for non-pdf input")
		}
	})
}

func TestApplyOverlays(t *testing.T) {
	pdf := minimalPDF(t, 3, 600, 800)
	signature := pngBytes(t, 40, 20)
	seal := jpegBytes(t, 30, 30)

	t.Run("signature and seal on page two", func(t *testing.T) {
		out, err := ApplyOverlays(pdf, 2, &RenderSize{Width: 1200, Height: 1600}, []Overlay{
			{Kind: OverlaySignature, Placement: Placement{X: 100, Y: 200, Width: 300, Height: 100}, Image: signature},
			{Kind: OverlaySeal, Placement: Placement{X: 500, Y: 200, Width: 150, Height: 150}, Image: seal},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) <= len(pdf) {
			t.Errorf("stamped output should exceed input size: %d <= %d", len(out), len(pdf))
		}
		if got := pageCount(t, out); got != 3 {
			t.Errorf("expected 3 pages, got %d", got)
		}
	})

	t.Run("out of range page clamps instead of failing", func(t *testing.T) {
		out, err := ApplyOverlays(pdf, 99, nil, []Overlay{
			{Kind: OverlaySignature, Placement: Placement{X: 10, Y: 10, Width: 100, Height: 40}, Image: signature},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) <= len(pdf) {
			t.Errorf("stamped output should exceed input size")
		}
	})

	t.Run("no overlays returns document unchanged", func(t *testing.T) {
		out, err := ApplyOverlays(pdf, 1, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(out, pdf) {
			t.Errorf("expected unchanged bytes when no overlays requested")
		}
	})

	t.Run("invalid overlay bytes abort the whole apply", func(t *testing.T) {
		_, err := ApplyOverlays(pdf, 1, nil, []Overlay{
			{Kind: OverlaySignature, Placement: Placement{X: 10, Y: 10, Width: 100, Height: 40}, Image: signature},
			{Kind: OverlaySeal, Placement: Placement{X: 10, Y: 10, Width: 100, Height: 40}, Image: []byte("neither png nor jpeg")},
		})
		if !errors.Is(err, ErrUnsupportedImageFormat) {
			t.Fatalf("expected ErrUnsupportedImageFormat, got %v", err)
		}
	})
}

// The sign flow resolves the page, burns the overlays, then stamps the
// verification QR onto the same clamped page of the stamped output.
func TestApplyThenStampVerifyQR(t *testing.T) {
	pdf := minimalPDF(t, 2, 595.28, 841.89)
	signature := pngBytes(t, 40, 20)

	page, err := ResolvePage(pdf, 9)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if page.Number != 1 {
		t.Fatalf("expected out of range page to clamp to 1, got %d", page.Number)
	}

	signed, err := ApplyOverlays(pdf, 9, &RenderSize{Width: 1190, Height: 1684}, []Overlay{
		{Kind: OverlaySignature, Placement: Placement{X: 100, Y: 1500, Width: 200, Height: 80}, Image: signature},
	})
	if err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}

	out, err := StampVerifyQR(signed, page.Number, "http://localhost:8080/api/v1/verify/ref123")
	if err != nil {
		t.Fatalf("unexpected stamp error: %v", err)
	}
	if len(out) <= len(pdf) {
		t.Errorf("stamped output should exceed input size")
	}
	if got := pageCount(t, out); got != 2 {
		t.Errorf("expected 2 pages, got %d", got)
	}
}

func TestStampVerifyQR(t *testing.T) {
	pdf := minimalPDF(t, 1, 600, 800)

	out, err := StampVerifyQR(pdf, 1, "http://localhost:8080/api/v1/endorsements/verify/ref123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) <= len(pdf) {
		t.Errorf("stamped output should exceed input size")
	}
	if got := pageCount(t, out); got != 1 {
		t.Errorf("expected 1 page, got %d", got)
	}
}
