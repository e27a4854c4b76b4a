package xlsx

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/convertra/pdf2sheet/internal/output"
)

const (
	sheetTextLog = "All_Text_Content"
	sheetSummary = "Page_Summary"
	sheetRawData = "Raw_Data"
)

// Writer serializes an output model into an .xlsx workbook. The workbook
// always contains the text log, per-page summary and raw diagnostics sheets,
// plus one sheet per detected table.
type Writer struct {
	log *logrus.Logger
}

func NewWriter(log *logrus.Logger) *Writer {
	return &Writer{log: log}
}

// Write creates the workbook at path, overwriting any existing file.
func (w *Writer) Write(model *output.Model, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	namer := newSheetNamer()

	// The default sheet becomes the text log so the workbook never
	// carries an empty "Sheet1".
	textSheet := namer.name(sheetTextLog)
	if err := f.SetSheetName("Sheet1", textSheet); err != nil {
		return fmt.Errorf("failed to create text log sheet: %w", err)
	}
	if err := w.writeTextLog(f, textSheet, model); err != nil {
		return err
	}

	for _, table := range model.Tables {
		if err := w.writeTable(f, namer, table); err != nil {
			return err
		}
	}

	if err := w.writeSummary(f, namer, model); err != nil {
		return err
	}
	if err := w.writeDiagnostics(f, namer, model); err != nil {
		return err
	}

	if idx, err := f.GetSheetIndex(textSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	w.log.WithFields(logrus.Fields{
		"path":   path,
		"tables": len(model.Tables),
		"pages":  model.PageCount,
	}).Info("workbook written")
	return nil
}

func (w *Writer) writeTextLog(f *excelize.File, sheet string, model *output.Model) error {
	if err := writeRow(f, sheet, 1, []any{"Page", "Line", "Content", "Strategy"}); err != nil {
		return err
	}
	for i, entry := range model.TextLog {
		row := []any{entry.Page, entry.Line, entry.Content, string(entry.Strategy)}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeTable(f *excelize.File, namer *sheetNamer, table output.TableSection) error {
	sheet := namer.name(fmt.Sprintf("Table_P%d_%d", table.Page, table.Index))
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create table sheet %s: %w", sheet, err)
	}
	for r, cells := range table.Rows {
		row := make([]any, len(cells))
		for c, cell := range cells {
			row[c] = cell
		}
		if err := writeRow(f, sheet, r+1, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeSummary(f *excelize.File, namer *sheetNamer, model *output.Model) error {
	sheet := namer.name(sheetSummary)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header := []any{"Page", "Classification", "Strategy", "Characters", "Tables", "Succeeded", "Reason"}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, s := range model.Summary {
		row := []any{
			s.Page,
			string(s.Classification),
			string(s.Strategy),
			s.Characters,
			s.Tables,
			s.Succeeded,
			string(s.Reason),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeDiagnostics(f *excelize.File, namer *sheetNamer, model *output.Model) error {
	sheet := namer.name(sheetRawData)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create diagnostics sheet: %w", err)
	}

	header := []any{"Page", "Strategy", "Config", "Characters", "Accepted", "Reason", "Note"}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, d := range model.Diagnostics {
		row := []any{
			d.Page,
			string(d.Strategy),
			d.Config,
			d.Characters,
			d.Accepted,
			string(d.Reason),
			d.Note,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
