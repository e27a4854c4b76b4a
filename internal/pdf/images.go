package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Images extracts embedded page images for OCR. Extraction is directory
// scoped: the caller owns the output directory and removes it when the page
// is done, so image data never outlives one page's processing.
type Images struct {
	conf *model.Configuration
}

// NewImages creates a new page image extractor
func NewImages() *Images {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Images{
		conf: conf,
	}
}

// ExtractPageImages writes every image embedded on the given page into dir
// and returns the written file paths in deterministic (name) order. A page
// without images yields an empty slice, not an error.
func (im *Images) ExtractPageImages(path string, pageNum int, dir string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if pageNum < 1 {
		return nil, fmt.Errorf("invalid page number: %d", pageNum)
	}

	selected := []string{strconv.Itoa(pageNum)}
	if err := api.ExtractImagesFile(path, dir, selected, im.conf); err != nil {
		return nil, fmt.Errorf("failed to extract images from page %d: %w", pageNum, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted images: %w", err)
	}

	// os.ReadDir sorts by name, which keeps OCR input order stable
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}
