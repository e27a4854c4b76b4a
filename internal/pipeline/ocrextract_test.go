package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convertra/pdf2sheet/internal/ocr"
)

// fakeEngine answers recognition requests from a per-config text map.
type fakeEngine struct {
	probeErr error
	texts    map[string]string
	recErr   error
}

func (e *fakeEngine) Probe() error { return e.probeErr }

func (e *fakeEngine) Recognize(_ context.Context, _ []byte, cfg ocr.RecognitionConfig) (string, error) {
	if e.recErr != nil {
		return "", e.recErr
	}
	return e.texts[cfg.Raw], nil
}

// fakeProvider materializes fixed image payloads into the scratch directory.
type fakeProvider struct {
	images [][]byte
	err    error
	calls  int
}

func (p *fakeProvider) ExtractPageImages(_ string, _ int, dir string) ([]string, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	var paths []string
	for i, img := range p.images {
		path := filepath.Join(dir, fmt.Sprintf("img%d.png", i))
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func newTestOCRExtractor(t *testing.T, engine OCREngine, provider ImageProvider) *OCRExtractor {
	t.Helper()
	extractor, err := NewOCRExtractor(DefaultSettings(), engine, provider, testLogger())
	require.NoError(t, err)
	return extractor
}

func TestOCRExtractor_BestConfigWins(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{
		"psm6": "short",
		"psm3": "a considerably longer recognition result",
		"psm4": "mid size",
	}}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 1)

	require.True(t, result.Succeeded)
	assert.Equal(t, StrategyOCR, result.Strategy)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, "a considerably longer recognition result", result.Lines[0].Content)

	require.Len(t, result.Attempts, 3)
	assert.False(t, result.Attempts[0].Accepted)
	assert.True(t, result.Attempts[1].Accepted)
	assert.False(t, result.Attempts[2].Accepted)
	assert.Equal(t, "psm3", result.Attempts[1].Config)
}

func TestOCRExtractor_TieKeepsEarliestConfig(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{
		"psm6": "same size",
		"psm3": "same size",
		"psm4": "same size",
	}}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 1)

	require.True(t, result.Succeeded)
	assert.True(t, result.Attempts[0].Accepted)
	assert.Equal(t, "psm6", result.Attempts[0].Config)
}

func TestOCRExtractor_AllConfigsEmpty(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{}}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 1)

	assert.False(t, result.Succeeded)
	assert.Equal(t, ReasonOCREmptyResult, result.Reason)
	assert.Len(t, result.Attempts, 3)
}

func TestOCRExtractor_ProbeFailureSkipsExtraction(t *testing.T) {
	engine := &fakeEngine{probeErr: errors.New("tesseract not installed")}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 1)

	assert.False(t, result.Succeeded)
	assert.Equal(t, ReasonOCRUnavailable, result.Reason)
	assert.Zero(t, provider.calls, "engine probe failed, no images should be extracted")

	// The probe result is cached: a second page short-circuits too.
	extractor.ExtractPage(context.Background(), "doc.pdf", 2)
	assert.Zero(t, provider.calls)
}

func TestOCRExtractor_NoEmbeddedImages(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{"psm6": "unreachable"}}
	provider := &fakeProvider{}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 1)

	assert.False(t, result.Succeeded)
	assert.Equal(t, ReasonOCREmptyResult, result.Reason)
	require.Len(t, result.Attempts, 1)
	assert.Contains(t, result.Attempts[0].Note, "no embedded page images")
}

func TestOCRExtractor_FiltersShortLines(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{
		"psm6": "a real line\n|\nanother line\nx",
	}}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 4)

	require.Len(t, result.Lines, 2)
	assert.Equal(t, TextLine{Page: 4, Line: 1, Content: "a real line"}, result.Lines[0])
	assert.Equal(t, TextLine{Page: 4, Line: 2, Content: "another line"}, result.Lines[1])
}

func TestOCRExtractor_DetectsColumnAlignedTables(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{
		"psm6": "Invoice 1042\nItem  Qty  Price\nBolt  12  0.40\nNut  48  0.15",
	}}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 2)

	require.True(t, result.Succeeded)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, [][]string{
		{"Item", "Qty", "Price"},
		{"Bolt", "12", "0.40"},
		{"Nut", "48", "0.15"},
	}, result.Tables[0].Rows)

	// Promoted lines stay in the text log as well.
	assert.Len(t, result.Lines, 4)
}

func TestOCRExtractor_ScratchDirFailureReportsUnavailable(t *testing.T) {
	// Point TMPDIR at a directory that does not exist so the scratch
	// directory cannot be created.
	t.Setenv("TMPDIR", filepath.Join(t.TempDir(), "missing"))

	engine := &fakeEngine{texts: map[string]string{"psm6": "unreachable"}}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 1)

	assert.False(t, result.Succeeded)
	assert.Equal(t, ReasonOCRUnavailable, result.Reason)
	assert.Zero(t, provider.calls, "no image extraction without a scratch directory")
	require.Len(t, result.Attempts, 1)
	assert.Contains(t, result.Attempts[0].Note, "scratch directory")
}

func TestOCRExtractor_RecognitionErrorZeroesAttempt(t *testing.T) {
	engine := &fakeEngine{recErr: errors.New("engine crashed")}
	provider := &fakeProvider{images: [][]byte{[]byte("png")}}
	extractor := newTestOCRExtractor(t, engine, provider)

	result := extractor.ExtractPage(context.Background(), "doc.pdf", 1)

	assert.False(t, result.Succeeded)
	assert.Equal(t, ReasonOCREmptyResult, result.Reason)
	for _, attempt := range result.Attempts {
		assert.Zero(t, attempt.Characters)
		assert.Contains(t, attempt.Note, "engine crashed")
	}
}

func TestNewOCRExtractor_RejectsInvalidConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.OCRConfigs = []string{"psm99"}

	_, err := NewOCRExtractor(settings, &fakeEngine{}, &fakeProvider{}, testLogger())
	assert.Error(t, err)
}
