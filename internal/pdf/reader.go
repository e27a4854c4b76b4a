package pdf

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// Reader handles text-layer access to PDF files
type Reader struct {
	maxFileSize int64
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
	}
}

// PageTexts reads the text layer of every page in document order. Per-page
// text-layer failures are recorded on the PageText rather than returned, so
// the result always has one entry per page; content is never capped or
// truncated, however long a page's text is.
func (r *Reader) PageTexts(path string) ([]PageText, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.Size() > r.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), r.maxFileSize)
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pages := make([]PageText, 0, pdfReader.NumPage())
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		pages = append(pages, r.readPage(pdfReader, pageNum))
	}

	return pages, nil
}

// readPage extracts one page's plain text and positioned runs. The ledongthuc
// parser panics on some malformed content streams, so both extraction paths
// run under recover and a page where both fail carries the failure in Err.
func (r *Reader) readPage(pdfReader *pdf.Reader, pageNum int) PageText {
	pt := PageText{Index: pageNum}

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return pt
	}

	plain, plainErr := r.extractPlainText(page)
	runs, runsErr := r.extractRuns(page)

	pt.Plain = plain
	pt.Runs = runs

	if plainErr != nil && runsErr != nil {
		pt.Err = fmt.Errorf("text layer unreadable on page %d: %w", pageNum, plainErr)
	}

	return pt
}

func (r *Reader) extractPlainText(page pdf.Page) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("text extraction panicked: %v", rec)
		}
	}()

	return page.GetPlainText(nil)
}

func (r *Reader) extractRuns(page pdf.Page) (runs []TextRun, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			runs = nil
			err = fmt.Errorf("content extraction panicked: %v", rec)
		}
	}()

	content := page.Content()
	runs = make([]TextRun, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		runs = append(runs, TextRun{
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
			S:        t.S,
		})
	}

	return runs, nil
}
