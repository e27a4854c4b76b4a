package pipeline

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/convertra/pdf2sheet/internal/ocr"
)

// OCREngine is the recognition collaborator contract. Probe must be callable
// before any recognition so an unusable engine short-circuits every
// image-only page instead of failing page by page.
type OCREngine interface {
	Probe() error
	Recognize(ctx context.Context, imageData []byte, cfg ocr.RecognitionConfig) (string, error)
}

// ImageProvider extracts a single page's embedded images into a directory.
type ImageProvider interface {
	ExtractPageImages(path string, pageNum int, dir string) ([]string, error)
}

// columnSplit separates OCR text into candidate table cells on runs of two
// or more spaces, the same delimiter heuristic the column detector trusts.
var columnSplit = regexp.MustCompile(`\s{2,}`)

// OCRExtractor recovers text from image-only pages. Every configured
// recognition config is attempted and the one with the greatest character
// yield wins; ties keep the earliest-configured result so output is
// deterministic across runs.
type OCRExtractor struct {
	engine   OCREngine
	images   ImageProvider
	settings Settings
	configs  []ocr.RecognitionConfig
	log      *logrus.Logger

	probed   bool
	probeErr error
}

// NewOCRExtractor creates an OCR extractor. The recognition configs in
// settings are parsed once here; an invalid config is a construction error,
// not a per-page one.
func NewOCRExtractor(settings Settings, engine OCREngine, images ImageProvider, log *logrus.Logger) (*OCRExtractor, error) {
	configs, err := ocr.ParseConfigs(settings.OCRConfigs)
	if err != nil {
		return nil, fmt.Errorf("invalid OCR configuration: %w", err)
	}

	return &OCRExtractor{
		engine:   engine,
		images:   images,
		settings: settings,
		configs:  configs,
		log:      log,
	}, nil
}

// Available reports whether the OCR engine can recognize at all. The probe
// runs once and is cached for the extractor's lifetime.
func (e *OCRExtractor) Available() error {
	if !e.probed {
		e.probed = true
		e.probeErr = e.engine.Probe()
	}
	return e.probeErr
}

// ExtractPage runs OCR over the page's images. Image data lives in a
// temporary directory scoped to this call and is removed on every exit path.
func (e *OCRExtractor) ExtractPage(ctx context.Context, path string, pageNum int) ExtractionResult {
	result := ExtractionResult{Strategy: StrategyOCR}

	if err := e.Available(); err != nil {
		result.Reason = ReasonOCRUnavailable
		result.Attempts = []Attempt{{
			Strategy: StrategyOCR,
			Reason:   ReasonOCRUnavailable,
			Note:     err.Error(),
		}}
		return result
	}

	// A scratch-directory failure means the engine never ran, which is an
	// availability problem, not an empty recognition result.
	dir, err := os.MkdirTemp("", "pdf2sheet_ocr_*")
	if err != nil {
		result.Reason = ReasonOCRUnavailable
		result.Attempts = []Attempt{{
			Strategy: StrategyOCR,
			Reason:   ReasonOCRUnavailable,
			Note:     fmt.Sprintf("cannot create scratch directory: %v", err),
		}}
		return result
	}
	defer os.RemoveAll(dir)

	imageData, note := e.loadPageImages(path, pageNum, dir)
	if len(imageData) == 0 {
		result.Reason = ReasonOCREmptyResult
		result.Attempts = []Attempt{{
			Strategy: StrategyOCR,
			Reason:   ReasonOCREmptyResult,
			Note:     note,
		}}
		return result
	}

	// Evaluate every recognition config and keep the best yield in place;
	// a later config must strictly beat the best-so-far to replace it.
	bestText := ""
	bestYield := 0
	bestIdx := -1

	for i, cfg := range e.configs {
		text, yield, attemptNote := e.recognizeAll(ctx, imageData, cfg)
		result.Attempts = append(result.Attempts, Attempt{
			Strategy:   StrategyOCR,
			Config:     cfg.Raw,
			Characters: yield,
			Note:       attemptNote,
		})
		if yield > bestYield {
			bestText = text
			bestYield = yield
			bestIdx = i
		}
	}

	if bestYield == 0 {
		result.Reason = ReasonOCREmptyResult
		return result
	}

	result.Attempts[bestIdx].Accepted = true
	result.Lines = e.ocrLines(pageNum, bestText)
	result.Tables = detectOCRTables(pageNum, result.Lines)
	result.Characters = lineCharacters(result.Lines)
	result.Succeeded = result.Characters > 0
	if !result.Succeeded {
		result.Reason = ReasonOCREmptyResult
	}

	e.log.WithFields(logrus.Fields{
		"page":       pageNum,
		"config":     e.configs[bestIdx].Raw,
		"lines":      len(result.Lines),
		"tables":     len(result.Tables),
		"characters": result.Characters,
	}).Debug("ocr extraction finished")

	return result
}

// loadPageImages extracts and reads the page's embedded images. Failures are
// reported as a note, not an error: the page simply contributes no content.
func (e *OCRExtractor) loadPageImages(path string, pageNum int, dir string) ([][]byte, string) {
	files, err := e.images.ExtractPageImages(path, pageNum, dir)
	if err != nil {
		return nil, fmt.Sprintf("image extraction failed: %v", err)
	}
	if len(files) == 0 {
		return nil, "no embedded page images"
	}

	data := make([][]byte, 0, len(files))
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Sprintf("cannot read extracted image %s: %v", file, err)
		}
		data = append(data, b)
	}
	return data, ""
}

// recognizeAll runs one recognition config over every page image and joins
// the outputs. A per-image recognition error zeroes the attempt rather than
// escaping; the next config may still succeed.
func (e *OCRExtractor) recognizeAll(ctx context.Context, images [][]byte, cfg ocr.RecognitionConfig) (string, int, string) {
	var parts []string
	for _, img := range images {
		text, err := e.engine.Recognize(ctx, img, cfg)
		if err != nil {
			return "", 0, fmt.Sprintf("recognition failed: %v", err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	joined := strings.Join(parts, "\n")
	return joined, utf8.RuneCountInString(strings.TrimSpace(joined)), ""
}

// ocrLines splits recognized text on the engine's reported line boundaries.
// Lines shorter than MinLineLength are treated as recognition noise; kept
// lines are preserved verbatim.
func (e *OCRExtractor) ocrLines(pageNum int, text string) []TextLine {
	var lines []TextLine
	lineNum := 0
	for _, raw := range strings.Split(text, "\n") {
		content := strings.TrimSpace(raw)
		if utf8.RuneCountInString(content) < e.settings.MinLineLength {
			continue
		}
		lineNum++
		lines = append(lines, TextLine{Page: pageNum, Line: lineNum, Content: content})
	}
	return lines
}

// detectOCRTables promotes runs of column-aligned OCR lines into tables.
// The bar is deliberately conservative: at least two consecutive lines
// splitting into the same number (>= 2) of columns. Content that does not
// clear it stays as plain lines; promoted lines also remain in the line list
// so the text log loses nothing.
func detectOCRTables(pageNum int, lines []TextLine) []Table {
	var tables []Table

	i := 0
	for i < len(lines) {
		cols := columnSplit.Split(lines[i].Content, -1)
		if len(cols) < 2 {
			i++
			continue
		}

		rows := [][]string{cols}
		j := i + 1
		for j < len(lines) {
			next := columnSplit.Split(lines[j].Content, -1)
			if len(next) != len(cols) {
				break
			}
			rows = append(rows, next)
			j++
		}

		if len(rows) >= 2 {
			tables = append(tables, Table{Page: pageNum, Index: len(tables) + 1, Rows: rows})
		}
		i = j
	}

	return tables
}

func lineCharacters(lines []TextLine) int {
	total := 0
	for _, line := range lines {
		total += utf8.RuneCountInString(line.Content)
	}
	return total
}
