// Package pipeline implements the hybrid extraction pipeline: per-page
// classification, text-layer or OCR extraction with one-shot fallback, and
// aggregation into a document-level result.
package pipeline

import "fmt"

// Classification is the page classifier's verdict for one page.
type Classification string

const (
	ClassUnknown     Classification = ""
	ClassTextBearing Classification = "text-bearing"
	ClassImageOnly   Classification = "image-only"
)

// Strategy identifies which extraction strategy produced a result.
type Strategy string

const (
	StrategyNone Strategy = "none"
	StrategyText Strategy = "text"
	StrategyOCR  Strategy = "ocr"
)

// PageState tracks a page through the orchestrator's state machine.
type PageState string

const (
	StateUnclassified        PageState = "unclassified"
	StateClassified          PageState = "classified"
	StateExtractionAttempted PageState = "extraction-attempted"
	StateFallbackAttempted   PageState = "fallback-attempted"
	StateSucceeded           PageState = "succeeded"
	StateFailed              PageState = "failed"
)

// allowedTransitions encodes the page state machine. Keeping it as data makes
// the one-shot fallback bound checkable: FallbackAttempted is only reachable
// from ExtractionAttempted and only terminates in Succeeded or Failed.
var allowedTransitions = map[PageState][]PageState{
	StateUnclassified:        {StateClassified},
	StateClassified:          {StateExtractionAttempted},
	StateExtractionAttempted: {StateSucceeded, StateFallbackAttempted, StateFailed},
	StateFallbackAttempted:   {StateSucceeded, StateFailed},
}

// FailureReason explains why a page (or one attempt on a page) failed.
type FailureReason string

const (
	ReasonNone           FailureReason = ""
	ReasonTextExtraction FailureReason = "text-extraction-error"
	ReasonOCRUnavailable FailureReason = "ocr-unavailable"
	ReasonOCREmptyResult FailureReason = "ocr-empty-result"
	ReasonLowYield       FailureReason = "low-yield"
)

// TextLine is one ordered line of extracted text. Content is preserved
// verbatim: lines are never merged or truncated regardless of length.
type TextLine struct {
	Page    int    `json:"page"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// Table is one detected tabular structure. Rows may be ragged; missing cells
// are empty strings and cell order within a row follows reading order.
type Table struct {
	Page  int        `json:"page"`
	Index int        `json:"index"` // 1-based within the page
	Rows  [][]string `json:"rows"`
}

// Attempt records one extraction attempt, including attempts whose output was
// discarded (losing OCR configs, under-yield first strategies). The raw
// diagnostic output section is built from these.
type Attempt struct {
	Strategy   Strategy      `json:"strategy"`
	Config     string        `json:"config,omitempty"` // recognition config for OCR attempts
	Characters int           `json:"characters"`
	Accepted   bool          `json:"accepted"`
	Reason     FailureReason `json:"reason,omitempty"`
	Note       string        `json:"note,omitempty"`
}

// ExtractionResult is the outcome of extracting one page with one strategy
// (plus, after fallback, the merged attempt history of both strategies).
type ExtractionResult struct {
	Lines      []TextLine    `json:"lines"`
	Tables     []Table       `json:"tables"`
	Strategy   Strategy      `json:"strategy"`
	Characters int           `json:"characters"`
	Succeeded  bool          `json:"succeeded"`
	Reason     FailureReason `json:"reason,omitempty"`
	Attempts   []Attempt     `json:"attempts"`
}

// Page is one PDF page moving through the pipeline.
type Page struct {
	Index          int              `json:"index"` // 1-based
	State          PageState        `json:"state"`
	Classification Classification   `json:"classification"`
	TextLength     int              `json:"text_length"` // extractable chars measured at classification
	Strategy       Strategy         `json:"strategy"`    // strategy that produced the final result
	Result         ExtractionResult `json:"result"`
	Notes          []string         `json:"notes,omitempty"`
}

// advance moves the page to the next state, enforcing the state machine.
func (p *Page) advance(next PageState) error {
	for _, allowed := range allowedTransitions[p.State] {
		if allowed == next {
			p.State = next
			return nil
		}
	}
	return fmt.Errorf("invalid page state transition: %s -> %s", p.State, next)
}

// note appends a diagnostic note to the page.
func (p *Page) note(format string, args ...any) {
	p.Notes = append(p.Notes, fmt.Sprintf(format, args...))
}

// Document is the assembled view of one converted PDF.
type Document struct {
	Source    string  `json:"source"`
	PageCount int     `json:"page_count"`
	Mode      string  `json:"mode"` // "text", "ocr", "mixed" or "none"
	Pages     []*Page `json:"pages"`
}

// AggregateResult is the document-level outcome: every page's result plus
// overall counts. It is append-only during a run and read-only afterward.
type AggregateResult struct {
	Document        *Document `json:"document"`
	TotalCharacters int       `json:"total_characters"`
	TotalTables     int       `json:"total_tables"`
	PagesNeedingOCR []int     `json:"pages_needing_ocr"`
	FailedPages     []int     `json:"failed_pages"`
}

// Settings is the immutable configuration surface the pipeline consumes.
type Settings struct {
	OCRDPI            int
	OCRConfigs        []string
	OCRLanguages      []string
	MinTextThreshold  int // classification cutoff
	MinYieldThreshold int // fallback trigger cutoff, lower than the above
	MinLineLength     int // OCR noise filter; text-layer lines are never filtered
}

// DefaultSettings mirrors the documented policy defaults.
func DefaultSettings() Settings {
	return Settings{
		OCRDPI:            300,
		OCRConfigs:        []string{"psm6", "psm3", "psm4"},
		OCRLanguages:      []string{"eng"},
		MinTextThreshold:  50,
		MinYieldThreshold: 1,
		MinLineLength:     2,
	}
}
