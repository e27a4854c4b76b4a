package pipeline

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/convertra/pdf2sheet/internal/pdf"
)

// Layout tolerances in PDF points. Rows are grouped on Y, cells split on wide
// X gaps; ordinary word spacing stays well under the cell gap.
const (
	rowTolerance = 3.0
	cellGap      = 12.0
	minWordGap   = 1.0
)

// textRow is one reconstructed visual row of a page.
type textRow struct {
	y     float64
	cells []textCell
}

type textCell struct {
	x    float64
	text string
}

func (r textRow) line() string {
	parts := make([]string, 0, len(r.cells))
	for _, c := range r.cells {
		parts = append(parts, c.text)
	}
	return strings.Join(parts, " ")
}

// TextExtractor pulls ordered lines and tables from a text-bearing page.
// Nothing is length-capped: a 2,000 character line comes out as one line.
type TextExtractor struct {
	settings Settings
	log      *logrus.Logger
}

// NewTextExtractor creates a text/table extractor with the given settings.
func NewTextExtractor(settings Settings, log *logrus.Logger) *TextExtractor {
	return &TextExtractor{
		settings: settings,
		log:      log,
	}
}

// ExtractPage produces the page's lines and tables in reading order. Rows
// captured inside a Table are not duplicated into the plain line list; if
// structure detection cannot hold a region together, that region falls back
// to raw lines so no content is lost either way.
func (e *TextExtractor) ExtractPage(pt pdf.PageText) ExtractionResult {
	result := ExtractionResult{Strategy: StrategyText}

	if pt.Err != nil {
		result.Reason = ReasonTextExtraction
		result.Attempts = []Attempt{{
			Strategy: StrategyText,
			Reason:   ReasonTextExtraction,
			Note:     pt.Err.Error(),
		}}
		return result
	}

	rows := buildRows(pt.Runs)
	if len(rows) == 0 {
		// No positioned runs; fall back to the plain text layer.
		result.Lines = plainLines(pt)
	} else {
		result.Lines, result.Tables = e.splitRows(pt.Index, rows)
	}

	result.Characters = countCharacters(result.Lines, result.Tables)
	result.Succeeded = result.Characters > 0
	result.Attempts = []Attempt{{
		Strategy:   StrategyText,
		Characters: result.Characters,
		Accepted:   result.Succeeded,
	}}

	e.log.WithFields(logrus.Fields{
		"page":       pt.Index,
		"lines":      len(result.Lines),
		"tables":     len(result.Tables),
		"characters": result.Characters,
	}).Debug("text extraction finished")

	return result
}

// splitRows walks the page's rows in reading order, promoting runs of
// multi-cell rows into tables and emitting everything else as plain lines.
// A table run needs at least two consecutive rows of at least two cells.
func (e *TextExtractor) splitRows(pageNum int, rows []textRow) ([]TextLine, []Table) {
	var lines []TextLine
	var tables []Table

	lineNum := 0
	emitLine := func(content string) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		lineNum++
		lines = append(lines, TextLine{Page: pageNum, Line: lineNum, Content: content})
	}

	i := 0
	for i < len(rows) {
		if len(rows[i].cells) < 2 {
			emitLine(rows[i].line())
			i++
			continue
		}

		j := i + 1
		for j < len(rows) && len(rows[j].cells) >= 2 {
			j++
		}

		if j-i < 2 {
			// A lone multi-cell row is not enough structure for a table.
			emitLine(rows[i].line())
			i++
			continue
		}

		table, ok := promoteRows(pageNum, len(tables)+1, rows[i:j])
		if ok {
			tables = append(tables, table)
		} else {
			for _, row := range rows[i:j] {
				emitLine(row.line())
			}
		}
		i = j
	}

	return lines, tables
}

// promoteRows converts a run of multi-cell rows into a Table, preserving
// reading order. Ragged rows are kept ragged; cells are never re-sorted.
func promoteRows(pageNum, index int, rows []textRow) (Table, bool) {
	table := Table{Page: pageNum, Index: index}

	for _, row := range rows {
		cells := make([]string, 0, len(row.cells))
		for _, c := range row.cells {
			cells = append(cells, strings.TrimSpace(c.text))
		}
		table.Rows = append(table.Rows, cells)
	}

	if len(table.Rows) == 0 {
		return Table{}, false
	}
	return table, true
}

// buildRows groups positioned runs into visual rows (top to bottom) and
// merges each row's runs into cells, splitting on gaps wider than cellGap.
func buildRows(runs []pdf.TextRun) []textRow {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]pdf.TextRun, len(runs))
	copy(sorted, runs)
	// PDF Y grows upward, so reading order is descending Y then ascending X.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows []textRow
	var current []pdf.TextRun
	currentY := sorted[0].Y

	flush := func() {
		if len(current) == 0 {
			return
		}
		rows = append(rows, mergeRow(current, currentY))
		current = current[:0]
	}

	for _, run := range sorted {
		if len(current) > 0 && currentY-run.Y > rowTolerance {
			flush()
			currentY = run.Y
		}
		if len(current) == 0 {
			currentY = run.Y
		}
		current = append(current, run)
	}
	flush()

	return rows
}

// mergeRow joins a row's runs (already X-sorted) into cells. Within a cell a
// space is inserted when the gap exceeds a fraction of the font size.
func mergeRow(runs []pdf.TextRun, y float64) textRow {
	row := textRow{y: y}

	var cell strings.Builder
	cellX := runs[0].X
	prevEnd := runs[0].X

	flush := func() {
		text := cell.String()
		if strings.TrimSpace(text) != "" {
			row.cells = append(row.cells, textCell{x: cellX, text: text})
		}
		cell.Reset()
	}

	for i, run := range runs {
		gap := run.X - prevEnd
		switch {
		case i == 0:
			// First run starts the first cell.
		case gap > cellGap:
			flush()
			cellX = run.X
		case gap > wordGap(run.FontSize):
			cell.WriteByte(' ')
		}
		cell.WriteString(run.S)
		prevEnd = run.X + run.W
	}
	flush()

	return row
}

func wordGap(fontSize float64) float64 {
	gap := fontSize * 0.3
	if gap < minWordGap {
		gap = minWordGap
	}
	return gap
}

// plainLines splits the plain text layer into verbatim lines when no
// positioned runs are available.
func plainLines(pt pdf.PageText) []TextLine {
	var lines []TextLine
	lineNum := 0
	for _, raw := range strings.Split(pt.Plain, "\n") {
		content := strings.TrimSpace(raw)
		if content == "" {
			continue
		}
		lineNum++
		lines = append(lines, TextLine{Page: pt.Index, Line: lineNum, Content: content})
	}
	return lines
}

// countCharacters totals the characters extracted into lines and tables;
// this is the page's yield.
func countCharacters(lines []TextLine, tables []Table) int {
	total := 0
	for _, line := range lines {
		total += utf8.RuneCountInString(line.Content)
	}
	for _, table := range tables {
		for _, row := range table.Rows {
			for _, cell := range row {
				total += utf8.RuneCountInString(cell)
			}
		}
	}
	return total
}
