package endorse

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	qrcode "github.com/skip2/go-qrcode"
)

const verifyQRSize = 50

// StampVerifyQR draws a small QR code for the given URL into the
// bottom-right corner of the endorsed page. Visual aid only, it carries a
// lookup reference, not a cryptographic proof.
func StampVerifyQR(pdf []byte, pageNumber int, url string) ([]byte, error) {
	qr, err := qrcode.Encode(url, qrcode.Medium, verifyQRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification qr code: %w", err)
	}

	wm, err := api.ImageWatermarkForReader(bytes.NewReader(qr), "pos:br, off:-4 4, scale:1 abs, rot:0", true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build qr watermark: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, []string{strconv.Itoa(pageNumber)}, wm, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to stamp verification qr code: %w", err)
	}

	return out.Bytes(), nil
}
