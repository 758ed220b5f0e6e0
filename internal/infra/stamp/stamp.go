// Package stamp renders the verification QR code and places it onto the
// first page of the uploaded PDF.
package stamp

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSizePx = 256

// Anchored bottom-right with a small inset so the stamp does not cover
// typical footer content.
const watermarkDesc = "pos:br, off:-24 24, scalefactor:.14 abs, rot:0"

type Embedder struct{}

func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Embed returns a copy of pdf with a QR code for verifyURL stamped onto the
// first page. The input bytes are never modified.
func (e *Embedder) Embed(pdf []byte, verifyURL string) ([]byte, error) {
	png, err := qrcode.Encode(verifyURL, qrcode.Medium, qrSizePx)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(png), watermarkDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("prepare watermark: %w", err)
	}
	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, []string{"1"}, wm, nil); err != nil {
		return nil, fmt.Errorf("stamp pdf: %w", err)
	}
	return out.Bytes(), nil
}

// VerifyURL builds the public verification link embedded in the QR code.
func VerifyURL(base, token string) string {
	return base + "/verify?token=" + url.QueryEscape(token)
}
