package pipeline

import "errors"

// Document-level failures. These are the only errors a conversion surfaces to
// the caller; per-page failures are recovered via the one-shot fallback and
// recorded on the page instead.
var (
	// ErrDocumentUnreadable means the file is missing, not a valid PDF
	// container, or encrypted. Raised before any page is processed.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrNoContentExtracted means every page failed. The aggregate result is
	// still returned alongside it so callers can report which pages failed
	// and why.
	ErrNoContentExtracted = errors.New("no content extracted")
)
