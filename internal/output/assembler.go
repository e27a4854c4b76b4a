package output

import "github.com/convertra/pdf2sheet/internal/pipeline"

// Assemble flattens an aggregate into the output model. It is a pure
// function of its input: pages arrive in document order and per-page line
// order is preserved, so assembly is deterministic.
func Assemble(agg *pipeline.AggregateResult) *Model {
	model := &Model{
		Source:          agg.Document.Source,
		PageCount:       agg.Document.PageCount,
		Mode:            agg.Document.Mode,
		TotalCharacters: agg.TotalCharacters,
		TotalTables:     agg.TotalTables,
		PagesNeedingOCR: agg.PagesNeedingOCR,
		FailedPages:     agg.FailedPages,
	}

	for _, page := range agg.Document.Pages {
		for _, line := range page.Result.Lines {
			model.TextLog = append(model.TextLog, TextEntry{
				Page:     line.Page,
				Line:     line.Line,
				Content:  line.Content,
				Strategy: page.Strategy,
			})
		}

		for _, table := range page.Result.Tables {
			model.Tables = append(model.Tables, TableSection{
				Page:  table.Page,
				Index: table.Index,
				Rows:  table.Rows,
			})
		}

		model.Summary = append(model.Summary, PageSummary{
			Page:           page.Index,
			Classification: page.Classification,
			Strategy:       page.Strategy,
			Characters:     page.Result.Characters,
			Tables:         len(page.Result.Tables),
			Succeeded:      page.State == pipeline.StateSucceeded,
			Reason:         page.Result.Reason,
		})

		for _, attempt := range page.Result.Attempts {
			model.Diagnostics = append(model.Diagnostics, DiagnosticEntry{
				Page:       page.Index,
				Strategy:   attempt.Strategy,
				Config:     attempt.Config,
				Characters: attempt.Characters,
				Accepted:   attempt.Accepted,
				Reason:     attempt.Reason,
				Note:       attempt.Note,
			})
		}
	}

	return model
}
