package xlsx

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/convertra/pdf2sheet/internal/output"
	"github.com/convertra/pdf2sheet/internal/pipeline"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleModel() *output.Model {
	return &output.Model{
		Source:    "doc.pdf",
		PageCount: 2,
		Mode:      "mixed",
		TextLog: []output.TextEntry{
			{Page: 1, Line: 1, Content: "hello", Strategy: pipeline.StrategyText},
			{Page: 2, Line: 1, Content: "scanned", Strategy: pipeline.StrategyOCR},
		},
		Tables: []output.TableSection{
			{Page: 2, Index: 1, Rows: [][]string{{"Item", "Qty"}, {"Bolt", "12"}}},
		},
		Summary: []output.PageSummary{
			{Page: 1, Classification: pipeline.ClassTextBearing, Strategy: pipeline.StrategyText, Characters: 5, Succeeded: true},
			{Page: 2, Classification: pipeline.ClassImageOnly, Strategy: pipeline.StrategyOCR, Characters: 7, Tables: 1, Succeeded: true},
		},
		Diagnostics: []output.DiagnosticEntry{
			{Page: 1, Strategy: pipeline.StrategyText, Characters: 5, Accepted: true},
			{Page: 2, Strategy: pipeline.StrategyOCR, Config: "psm6", Characters: 7, Accepted: true},
		},
		TotalCharacters: 12,
		TotalTables:     1,
	}
}

func TestWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	err := NewWriter(testLogger()).Write(sampleModel(), path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "All_Text_Content")
	assert.Contains(t, sheets, "Table_P2_1")
	assert.Contains(t, sheets, "Page_Summary")
	assert.Contains(t, sheets, "Raw_Data")
	assert.NotContains(t, sheets, "Sheet1")

	// Text log: header row then one row per entry.
	got, err := f.GetCellValue("All_Text_Content", "C2")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	got, err = f.GetCellValue("All_Text_Content", "D3")
	require.NoError(t, err)
	assert.Equal(t, "ocr", got)

	// Table sheets carry raw cells without a header.
	got, err = f.GetCellValue("Table_P2_1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Item", got)

	got, err = f.GetCellValue("Table_P2_1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "12", got)

	// Summary has one row per page.
	got, err = f.GetCellValue("Page_Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "image-only", got)

	// Diagnostics record the accepted OCR config.
	got, err = f.GetCellValue("Raw_Data", "C3")
	require.NoError(t, err)
	assert.Equal(t, "psm6", got)
}

func TestWriter_EmptyModelStillWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	model := &output.Model{Source: "doc.pdf", PageCount: 1, Mode: "none"}
	err := NewWriter(testLogger()).Write(model, path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), 3)
}
