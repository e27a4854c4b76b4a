package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convertra/pdf2sheet/internal/pipeline"
)

func sampleAggregate() *pipeline.AggregateResult {
	page1 := &pipeline.Page{
		Index:          1,
		State:          pipeline.StateSucceeded,
		Classification: pipeline.ClassTextBearing,
		Strategy:       pipeline.StrategyText,
		Result: pipeline.ExtractionResult{
			Strategy: pipeline.StrategyText,
			Lines: []pipeline.TextLine{
				{Page: 1, Line: 1, Content: "heading"},
				{Page: 1, Line: 2, Content: "body text"},
			},
			Tables: []pipeline.Table{
				{Page: 1, Index: 1, Rows: [][]string{{"a", "b"}, {"c", "d"}}},
			},
			Characters: 20,
			Succeeded:  true,
			Attempts: []pipeline.Attempt{
				{Strategy: pipeline.StrategyText, Characters: 20, Accepted: true},
			},
		},
	}
	page2 := &pipeline.Page{
		Index:          2,
		State:          pipeline.StateFailed,
		Classification: pipeline.ClassImageOnly,
		Strategy:       pipeline.StrategyOCR,
		Result: pipeline.ExtractionResult{
			Strategy: pipeline.StrategyOCR,
			Reason:   pipeline.ReasonOCREmptyResult,
			Attempts: []pipeline.Attempt{
				{Strategy: pipeline.StrategyOCR, Config: "psm6", Reason: pipeline.ReasonOCREmptyResult},
				{Strategy: pipeline.StrategyOCR, Config: "psm3", Reason: pipeline.ReasonOCREmptyResult},
			},
		},
	}

	return &pipeline.AggregateResult{
		Document: &pipeline.Document{
			Source:    "doc.pdf",
			PageCount: 2,
			Mode:      "text",
			Pages:     []*pipeline.Page{page1, page2},
		},
		TotalCharacters: 20,
		TotalTables:     1,
		PagesNeedingOCR: []int{2},
		FailedPages:     []int{2},
	}
}

func TestAssemble(t *testing.T) {
	model := Assemble(sampleAggregate())

	assert.Equal(t, "doc.pdf", model.Source)
	assert.Equal(t, 2, model.PageCount)
	assert.Equal(t, "text", model.Mode)
	assert.Equal(t, 20, model.TotalCharacters)
	assert.Equal(t, []int{2}, model.FailedPages)

	require.Len(t, model.TextLog, 2)
	assert.Equal(t, TextEntry{Page: 1, Line: 1, Content: "heading", Strategy: pipeline.StrategyText}, model.TextLog[0])
	assert.Equal(t, TextEntry{Page: 1, Line: 2, Content: "body text", Strategy: pipeline.StrategyText}, model.TextLog[1])

	require.Len(t, model.Tables, 1)
	assert.Equal(t, 1, model.Tables[0].Page)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, model.Tables[0].Rows)
}

func TestAssemble_SummaryCoversFailedPages(t *testing.T) {
	model := Assemble(sampleAggregate())

	require.Len(t, model.Summary, 2)

	ok := model.Summary[0]
	assert.Equal(t, 1, ok.Page)
	assert.True(t, ok.Succeeded)
	assert.Equal(t, 20, ok.Characters)
	assert.Equal(t, 1, ok.Tables)

	failed := model.Summary[1]
	assert.Equal(t, 2, failed.Page)
	assert.False(t, failed.Succeeded)
	assert.Zero(t, failed.Characters)
	assert.Zero(t, failed.Tables)
	assert.Equal(t, pipeline.ReasonOCREmptyResult, failed.Reason)
}

func TestAssemble_DiagnosticsIncludeDiscardedAttempts(t *testing.T) {
	model := Assemble(sampleAggregate())

	require.Len(t, model.Diagnostics, 3)
	assert.True(t, model.Diagnostics[0].Accepted)
	assert.Equal(t, "psm6", model.Diagnostics[1].Config)
	assert.Equal(t, "psm3", model.Diagnostics[2].Config)
	assert.Equal(t, 2, model.Diagnostics[2].Page)
}
