package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/convertra/pdf2sheet/internal/pdf"
)

// DocumentValidator gates a document before any page work starts.
type DocumentValidator interface {
	ValidateDocument(path string) error
}

// PageSource reads the text layer of every page in one pass.
type PageSource interface {
	PageTexts(path string) ([]pdf.PageText, error)
}

// PageOCR is the orchestrator's view of the OCR extractor.
type PageOCR interface {
	ExtractPage(ctx context.Context, path string, pageNum int) ExtractionResult
}

// Orchestrator drives the per-page pipeline: classify, extract with the
// strategy the classification selects, fall back at most once, aggregate.
// Pages are processed sequentially in document order.
type Orchestrator struct {
	validator  DocumentValidator
	pages      PageSource
	classifier *Classifier
	text       *TextExtractor
	ocr        PageOCR
	settings   Settings
	log        *logrus.Logger
}

func NewOrchestrator(validator DocumentValidator, pages PageSource, ocr PageOCR, settings Settings, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		validator:  validator,
		pages:      pages,
		classifier: NewClassifier(settings.MinTextThreshold),
		text:       NewTextExtractor(settings, log),
		ocr:        ocr,
		settings:   settings,
		log:        log,
	}
}

// Run converts one document. A partial result with some failed pages is a
// success; Run returns an error only when the document itself is unreadable,
// when the context is canceled between pages, or when no page yielded any
// content at all. In the last case the aggregate is still returned alongside
// ErrNoContentExtracted so callers can report per-page diagnostics.
func (o *Orchestrator) Run(ctx context.Context, path string) (*AggregateResult, error) {
	if err := o.validator.ValidateDocument(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentUnreadable, err)
	}

	pageTexts, err := o.pages.PageTexts(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentUnreadable, err)
	}

	agg := &AggregateResult{
		Document: &Document{
			Source:    path,
			PageCount: len(pageTexts),
			Pages:     make([]*Page, 0, len(pageTexts)),
		},
	}

	for _, pt := range pageTexts {
		// Cancellation is honored at page boundaries only; a page in
		// flight always completes or fails on its own terms.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conversion canceled: %w", err)
		}

		page, err := o.processPage(ctx, path, pt)
		if err != nil {
			return nil, err
		}
		agg.Document.Pages = append(agg.Document.Pages, page)
		o.accumulate(agg, page)
	}

	agg.Document.Mode = documentMode(agg.Document.Pages)

	if !anySucceeded(agg.Document.Pages) {
		return agg, ErrNoContentExtracted
	}
	return agg, nil
}

// processPage walks one page through the state machine. State transition
// errors indicate a pipeline bug, not bad input, and abort the run.
func (o *Orchestrator) processPage(ctx context.Context, path string, pt pdf.PageText) (*Page, error) {
	page := &Page{
		Index:      pt.Index,
		State:      StateUnclassified,
		Strategy:   StrategyNone,
		TextLength: pt.TextLength(),
	}

	page.Classification = o.classifier.Classify(page.TextLength)
	if err := page.advance(StateClassified); err != nil {
		return nil, err
	}
	if err := page.advance(StateExtractionAttempted); err != nil {
		return nil, err
	}

	o.log.WithFields(logrus.Fields{
		"page":           page.Index,
		"classification": page.Classification,
		"text_length":    page.TextLength,
	}).Debug("page classified")

	var result ExtractionResult
	switch page.Classification {
	case ClassTextBearing:
		result = o.text.ExtractPage(pt)
		if o.needsFallback(result) {
			if err := page.advance(StateFallbackAttempted); err != nil {
				return nil, err
			}
			page.note("text layer yielded %d characters, retrying with OCR", result.Characters)
			fallback := o.ocr.ExtractPage(ctx, path, page.Index)
			result = mergeFallback(result, fallback)
		}
	case ClassImageOnly:
		// OCR failures are terminal for the page. A page classified
		// image-only has nothing useful in its text layer, so there is
		// no reverse fallback.
		result = o.ocr.ExtractPage(ctx, path, page.Index)
	}

	result = o.enforceYield(result)
	page.Strategy = result.Strategy
	page.Result = result

	final := StateFailed
	if result.Succeeded {
		final = StateSucceeded
	}
	if err := page.advance(final); err != nil {
		return nil, err
	}

	if !result.Succeeded {
		o.log.WithFields(logrus.Fields{
			"page":   page.Index,
			"reason": result.Reason,
		}).Warn("page extraction failed")
	}
	return page, nil
}

// needsFallback decides whether a text-layer result triggers the one-shot
// OCR fallback: an outright failure or a yield below the configured floor.
func (o *Orchestrator) needsFallback(result ExtractionResult) bool {
	return !result.Succeeded || result.Characters < o.settings.MinYieldThreshold
}

// enforceYield applies the minimum-yield floor to whichever strategy
// terminated the page. A below-floor result fails the page with low-yield
// and its content is not accepted; the attempt history keeps the measured
// yields so diagnostics still show what each strategy produced.
func (o *Orchestrator) enforceYield(result ExtractionResult) ExtractionResult {
	if !result.Succeeded || result.Characters >= o.settings.MinYieldThreshold {
		return result
	}

	result.Succeeded = false
	result.Reason = ReasonLowYield
	result.Lines = nil
	result.Tables = nil
	result.Characters = 0
	for i := range result.Attempts {
		if result.Attempts[i].Accepted {
			result.Attempts[i].Accepted = false
			result.Attempts[i].Reason = ReasonLowYield
		}
	}
	return result
}

// mergeFallback replaces the primary result with the fallback one while
// keeping the full attempt history. The primary's accepted attempt is
// demoted; an under-yield primary that technically succeeded is marked
// low-yield so diagnostics explain why its output was discarded.
func mergeFallback(primary, fallback ExtractionResult) ExtractionResult {
	attempts := make([]Attempt, 0, len(primary.Attempts)+len(fallback.Attempts))
	for _, a := range primary.Attempts {
		a.Accepted = false
		if a.Reason == ReasonNone {
			a.Reason = ReasonLowYield
		}
		attempts = append(attempts, a)
	}
	attempts = append(attempts, fallback.Attempts...)

	fallback.Attempts = attempts
	return fallback
}

func (o *Orchestrator) accumulate(agg *AggregateResult, page *Page) {
	agg.TotalCharacters += page.Result.Characters
	agg.TotalTables += len(page.Result.Tables)

	for _, a := range page.Result.Attempts {
		if a.Strategy == StrategyOCR {
			agg.PagesNeedingOCR = append(agg.PagesNeedingOCR, page.Index)
			break
		}
	}
	if page.State == StateFailed {
		agg.FailedPages = append(agg.FailedPages, page.Index)
	}
}

// documentMode summarizes which strategies produced the document's content.
func documentMode(pages []*Page) string {
	var text, ocr bool
	for _, p := range pages {
		if p.State != StateSucceeded {
			continue
		}
		switch p.Strategy {
		case StrategyText:
			text = true
		case StrategyOCR:
			ocr = true
		}
	}
	switch {
	case text && ocr:
		return "mixed"
	case text:
		return "text"
	case ocr:
		return "ocr"
	default:
		return "none"
	}
}

func anySucceeded(pages []*Page) bool {
	for _, p := range pages {
		if p.State == StateSucceeded {
			return true
		}
	}
	return false
}
