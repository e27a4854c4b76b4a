package pdf

import "strings"

// TextRun is one positioned run of text from a page's text layer.
// Coordinates are in PDF points with the origin at the lower-left corner.
type TextRun struct {
	X        float64
	Y        float64
	W        float64
	FontSize float64
	S        string
}

// PageText holds everything the text layer yields for one page. A text-layer
// failure is recorded in Err rather than raised, so one malformed page never
// aborts the read of the remaining pages.
type PageText struct {
	Index int // 1-based page number
	Plain string
	Runs  []TextRun
	Err   error
}

// TextLength returns the number of characters in the page's plain text after
// trimming surrounding whitespace. This is the measure the classifier
// thresholds against, so a page of pure whitespace counts as zero.
func (p PageText) TextLength() int {
	return len([]rune(strings.TrimSpace(p.Plain)))
}

// FileStats describes a PDF file: size, page count, embedded image count and
// whatever document metadata the trailer carries.
type FileStats struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Pages        int    `json:"pages"`
	HasImages    bool   `json:"has_images"`
	ImageCount   int    `json:"image_count"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Producer     string `json:"producer,omitempty"`
	ModifiedDate string `json:"modified_date"`
}
