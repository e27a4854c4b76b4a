//go:build ocr

// Package ocr wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Build with the "ocr" tag to compile this implementation; without the tag a
// stub is compiled instead and every image-only page reports ocr-unavailable.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client performs OCR through short-lived gosseract clients. A fresh client
// is created per recognition so page segmentation mode changes cannot leak
// between attempts.
type Client struct {
	languages []string
	dpi       int
	probed    bool
	probeErr  error
}

// New creates an OCR client. languages are Tesseract language codes (e.g.
// "eng"); dpi is forwarded to the engine as user_defined_dpi when positive.
func New(languages []string, dpi int) *Client {
	return &Client{
		languages: languages,
		dpi:       dpi,
	}
}

// Probe verifies the engine can recognize at all by running OCR over a tiny
// in-memory image. The result is cached; callers may probe once up front and
// short-circuit all image-only pages when the engine is unusable.
func (c *Client) Probe() error {
	if c.probed {
		return c.probeErr
	}
	c.probed = true

	img, err := blankPNG()
	if err != nil {
		c.probeErr = fmt.Errorf("ocr probe: %w", err)
		return c.probeErr
	}

	if _, err := c.Recognize(context.Background(), img, RecognitionConfig{Raw: "psm6", PageSegMode: PSMSingleBlock}); err != nil {
		c.probeErr = fmt.Errorf("ocr engine unavailable: %w", err)
	}
	return c.probeErr
}

// Recognize performs OCR on encoded image data (PNG, JPEG, TIFF) under the
// given recognition config and returns the recognized text verbatim apart
// from leading/trailing whitespace.
func (c *Client) Recognize(ctx context.Context, imageData []byte, cfg RecognitionConfig) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(c.languages) > 0 {
		if err := client.SetLanguage(c.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if c.dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(c.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// blankPNG encodes a small white image used by Probe.
func blankPNG() ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
