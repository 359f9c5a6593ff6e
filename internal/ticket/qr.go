// Package ticket renders ticket numbers as scannable QR codes.
package ticket

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels used when none is requested.
const DefaultSize = 256

// QRCode encodes content as a PNG QR code of size x size pixels.
func QRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New("ticket: empty QR content")
	}
	if size <= 0 {
		size = DefaultSize
	}
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("ticket: encode QR: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return nil, fmt.Errorf("ticket: encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
