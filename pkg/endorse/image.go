package endorse

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// ErrUnsupportedImageFormat is the sentinel matched by errors.Is when
// neither codec could parse overlay bytes.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// UnsupportedImageFormatError carries both decode failures for diagnostics.
type UnsupportedImageFormatError struct {
	Guessed     ImageFormat
	PrimaryErr  error
	FallbackErr error
}

func (e *UnsupportedImageFormatError) Error() string {
	return fmt.Sprintf("unsupported image format: %s decode failed: %v, fallback decode failed: %v",
		e.Guessed, e.PrimaryErr, e.FallbackErr)
}

func (e *UnsupportedImageFormatError) Is(target error) bool {
	return target == ErrUnsupportedImageFormat
}

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

// SniffFormat guesses the image format from the first 4 bytes. Canvas-drawn
// signatures are always PNG; anything without the PNG signature is assumed
// to be JPEG, uploaded seal assets usually are.
func SniffFormat(data []byte) ImageFormat {
	if len(data) >= len(pngMagic) && bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return FormatPNG
	}
	return FormatJPEG
}

// DecodeOverlay decodes overlay bytes with the codec the magic bytes
// suggest, retrying once with the other codec when the primary attempt
// fails. Files do get mislabeled or re-saved in the wrong format, a single
// blind fallback covers that without a full content-type detector.
func DecodeOverlay(data []byte) (image.Image, ImageFormat, error) {
	guessed := SniffFormat(data)

	img, primaryErr := decodeAs(data, guessed)
	if primaryErr == nil {
		return img, guessed, nil
	}

	fallback := FormatJPEG
	if guessed == FormatJPEG {
		fallback = FormatPNG
	}

	img, fallbackErr := decodeAs(data, fallback)
	if fallbackErr == nil {
		return img, fallback, nil
	}

	return nil, "", &UnsupportedImageFormatError{
		Guessed:     guessed,
		PrimaryErr:  primaryErr,
		FallbackErr: fallbackErr,
	}
}

func decodeAs(data []byte, format ImageFormat) (image.Image, error) {
	switch format {
	case FormatPNG:
		return png.Decode(bytes.NewReader(data))
	default:
		return jpeg.Decode(bytes.NewReader(data))
	}
}

// DecodeDataURL strips an optional "data:...;base64," prefix and decodes
// the remainder. Plain base64 payloads without the prefix work too.
func DecodeDataURL(dataURL string) ([]byte, error) {
	payload := dataURL
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, errors.New("malformed data url: missing comma separator")
		}
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return raw, nil
}

// renderOverlayPNG decodes, resizes to the mapped rectangle and re-encodes
// as PNG, the format the watermark embedder receives. Resizing to the
// target point size lets the embed step draw at absolute scale 1 where
// one pixel lands on one point.
func renderOverlayPNG(data []byte, rect Rect) ([]byte, error) {
	img, _, err := DecodeOverlay(data)
	if err != nil {
		return nil, err
	}

	w := int(rect.Width + 0.5)
	h := int(rect.Height + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	resized := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, fmt.Errorf("failed to encode overlay image: %w", err)
	}
	return buf.Bytes(), nil
}
