// Package qr renders verification links as scannable PNG images.
package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 512

// levels are tried in order; long links may not fit at high recovery.
var levels = []qrcode.RecoveryLevel{qrcode.High, qrcode.Medium, qrcode.Low}

// Renderer produces PNG QR codes.
type Renderer struct {
	size int
}

// New creates a renderer. A non-positive size uses DefaultSize.
func New(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size}
}

// Render encodes content as a PNG, lowering error correction only when the
// content does not fit at a higher level.
func (r *Renderer) Render(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr content is empty")
	}
	var lastErr error
	for _, level := range levels {
		png, err := qrcode.Encode(content, level, r.size)
		if err == nil {
			return png, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("encode qr code: %w", lastErr)
}
