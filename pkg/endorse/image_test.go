package endorse

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected ImageFormat
	}{
		{"png signature", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, FormatPNG},
		{"jpeg marker", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{"arbitrary bytes assumed jpeg", []byte{0x00, 0x01, 0x02, 0x03}, FormatJPEG},
		{"short input assumed jpeg", []byte{0x89}, FormatJPEG},
		{"empty input assumed jpeg", nil, FormatJPEG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffFormat(tt.data); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDecodeOverlay(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		img, format, err := DecodeOverlay(pngBytes(t, 4, 4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if format != FormatPNG {
			t.Errorf("expected png, got %s", format)
		}
		if img.Bounds().Dx() != 4 {
			t.Errorf("unexpected bounds %v", img.Bounds())
		}
	})

	t.Run("valid jpeg", func(t *testing.T) {
		_, format, err := DecodeOverlay(jpegBytes(t, 4, 4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if format != FormatJPEG {
			t.Errorf("expected jpeg, got %s", format)
		}
	})

	// JPEG bytes behind a PNG magic prefix force the primary decode to
	// fail and the fallback codec to pick the image up.
	t.Run("jpeg mislabeled as png falls back", func(t *testing.T) {
		data := jpegBytes(t, 4, 4)
		mislabeled := append(append([]byte{}, pngMagic...), data...)
		_, _, err := DecodeOverlay(mislabeled)
		// The prepended magic corrupts the jpeg stream as well, both
		// decoders must have been tried before this error.
		if !errors.Is(err, ErrUnsupportedImageFormat) {
			t.Fatalf("expected ErrUnsupportedImageFormat, got %v", err)
		}

		var ufe *UnsupportedImageFormatError
		if !errors.As(err, &ufe) {
			t.Fatalf("expected UnsupportedImageFormatError, got %T", err)
		}
		if ufe.Guessed != FormatPNG {
			t.Errorf("expected png primary attempt, got %s", ufe.Guessed)
		}
		if ufe.PrimaryErr == nil || ufe.FallbackErr == nil {
			t.Errorf("expected both decode errors attached, got %+v", ufe)
		}
	})

	t.Run("garbage fails with both errors", func(t *testing.T) {
		_, _, err := DecodeOverlay([]byte("definitely not an image"))
		if !errors.Is(err, ErrUnsupportedImageFormat) {
			t.Fatalf("expected ErrUnsupportedImageFormat, got %v", err)
		}
	})
}

func TestDecodeDataURL(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0xFF}
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"with data url prefix", "data:image/png;base64," + encoded, raw, false},
		{"bare base64", encoded, raw, false},
		{"missing comma", "data:image/png;base64" + encoded, nil, true},
		{"invalid base64", "data:image/png;base64,!!!", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDataURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRenderOverlayPNG(t *testing.T) {
	out, err := renderOverlayPNG(pngBytes(t, 10, 10), Rect{X: 0, Y: 0, Width: 40, Height: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("expected 40x20, got %v", img.Bounds())
	}

	// Degenerate rects still yield a drawable 1x1 image.
	out, err = renderOverlayPNG(pngBytes(t, 10, 10), Rect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err = png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Errorf("expected 1x1, got %v", img.Bounds())
	}
}
