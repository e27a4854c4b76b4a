package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Stats handles PDF statistics operations
type Stats struct {
	maxFileSize int64
	validator   *Validator
}

// NewStats creates a new PDF stats analyzer with the specified constraints
func NewStats(maxFileSize int64) *Stats {
	return &Stats{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// GetFileStats returns size, page count, embedded image count and document
// metadata for a single PDF file.
func (s *Stats) GetFileStats(path string) (*FileStats, error) {
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

	if err := s.validator.ValidateFileInfo(path, fileInfo); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result := &FileStats{
		Path:         path,
		Size:         fileInfo.Size(),
		Pages:        r.NumPage(),
		ModifiedDate: fileInfo.ModTime().Format("2006-01-02 15:04:05"),
	}

	result.ImageCount = s.countImages(r)
	result.HasImages = result.ImageCount > 0

	s.extractMetadata(r, result)

	return result, nil
}

// countImages scans every page's XObject dictionary for image objects
func (s *Stats) countImages(r *pdf.Reader) int {
	count := 0
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		count += s.countImagesOnPage(r, pageNum)
	}
	return count
}

func (s *Stats) countImagesOnPage(r *pdf.Reader, pageNum int) int {
	defer func() {
		// Recover from any panics during image detection
		if recover() != nil {
			// Image detection failed for this page, continue with others
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return 0
	}

	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return 0
	}

	xObjects := resources.Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0
	}

	count := 0
	for _, key := range xObjects.Keys() {
		obj := xObjects.Key(key)
		if obj.IsNull() {
			continue
		}

		subtype := obj.Key("Subtype")
		if subtype.IsNull() || subtype.Name() != "Image" {
			continue
		}

		count++
	}

	return count
}

// extractMetadata safely extracts metadata from the PDF trailer
func (s *Stats) extractMetadata(r *pdf.Reader, result *FileStats) {
	defer func() {
		// Recover from any panics during metadata extraction
		if recover() != nil {
			// Metadata extraction failed, but we can continue with basic stats
		}
	}()

	trailer := r.Trailer()
	if trailer.IsNull() {
		return
	}

	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}

	if title := info.Key("Title"); !title.IsNull() {
		result.Title = strings.TrimSpace(title.String())
	}

	if author := info.Key("Author"); !author.IsNull() {
		result.Author = strings.TrimSpace(author.String())
	}

	if subject := info.Key("Subject"); !subject.IsNull() {
		result.Subject = strings.TrimSpace(subject.String())
	}

	if producer := info.Key("Producer"); !producer.IsNull() {
		result.Producer = strings.TrimSpace(producer.String())
	}
}
