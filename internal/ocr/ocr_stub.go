//go:build !ocr

// Package ocr wraps the Tesseract OCR engine.
//
// This is the stub implementation compiled when the "ocr" build tag is not
// set. Probe and Recognize report ErrOCRNotEnabled, so the pipeline marks
// every image-only page with reason ocr-unavailable instead of failing the
// document. Rebuild with:
//
//	go build -tags ocr
//
// to enable OCR (requires Tesseract to be installed).
package ocr

import (
	"context"
	"errors"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is the stub OCR client.
type Client struct{}

// New returns a stub client whose Probe and Recognize always fail with
// ErrOCRNotEnabled.
func New(languages []string, dpi int) *Client {
	return &Client{}
}

// Probe reports that OCR support is not enabled.
func (c *Client) Probe() error {
	return ErrOCRNotEnabled
}

// Recognize reports that OCR support is not enabled.
func (c *Client) Recognize(ctx context.Context, imageData []byte, cfg RecognitionConfig) (string, error) {
	return "", ErrOCRNotEnabled
}
