// Package output assembles a pipeline aggregate into the four-section model
// the spreadsheet writer serializes: full text log, per-table sections, a
// per-page summary, and raw attempt diagnostics.
package output

import "github.com/convertra/pdf2sheet/internal/pipeline"

// TextEntry is one row of the full text log.
type TextEntry struct {
	Page     int               `json:"page"`
	Line     int               `json:"line"`
	Content  string            `json:"content"`
	Strategy pipeline.Strategy `json:"strategy"`
}

// TableSection is one detected table with its placement identity.
type TableSection struct {
	Page  int        `json:"page"`
	Index int        `json:"index"`
	Rows  [][]string `json:"rows"`
}

// PageSummary is one row of the per-page summary. Failed pages appear with
// zero counts and their failure reason so the summary covers every page.
type PageSummary struct {
	Page           int                     `json:"page"`
	Classification pipeline.Classification `json:"classification"`
	Strategy       pipeline.Strategy       `json:"strategy"`
	Characters     int                     `json:"characters"`
	Tables         int                     `json:"tables"`
	Succeeded      bool                    `json:"succeeded"`
	Reason         pipeline.FailureReason  `json:"reason,omitempty"`
}

// DiagnosticEntry is one raw extraction attempt, discarded ones included.
type DiagnosticEntry struct {
	Page       int                    `json:"page"`
	Strategy   pipeline.Strategy      `json:"strategy"`
	Config     string                 `json:"config,omitempty"`
	Characters int                    `json:"characters"`
	Accepted   bool                   `json:"accepted"`
	Reason     pipeline.FailureReason `json:"reason,omitempty"`
	Note       string                 `json:"note,omitempty"`
}

// Model is the complete serialization-ready view of one conversion.
type Model struct {
	Source      string            `json:"source"`
	PageCount   int               `json:"page_count"`
	Mode        string            `json:"mode"`
	TextLog     []TextEntry       `json:"text_log"`
	Tables      []TableSection    `json:"tables"`
	Summary     []PageSummary     `json:"summary"`
	Diagnostics []DiagnosticEntry `json:"diagnostics"`

	TotalCharacters int   `json:"total_characters"`
	TotalTables     int   `json:"total_tables"`
	PagesNeedingOCR []int `json:"pages_needing_ocr"`
	FailedPages     []int `json:"failed_pages"`
}
