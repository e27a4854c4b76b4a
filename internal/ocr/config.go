package ocr

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSegMode represents Tesseract page segmentation modes. The values match
// Tesseract's --psm numbering so recognition configs can name them directly.
type PageSegMode int

const (
	PSMOSDOnly             PageSegMode = 0  // Orientation and script detection only
	PSMAutoOSD             PageSegMode = 1  // Automatic with OSD
	PSMAutoOnly            PageSegMode = 2  // Automatic, no OSD or OCR
	PSMAuto                PageSegMode = 3  // Fully automatic page segmentation
	PSMSingleColumn        PageSegMode = 4  // Single column of variable sizes
	PSMSingleBlockVertText PageSegMode = 5  // Single uniform block of vertical text
	PSMSingleBlock         PageSegMode = 6  // Single uniform block of text
	PSMSingleLine          PageSegMode = 7  // Single text line
	PSMSingleWord          PageSegMode = 8  // Single word
	PSMCircleWord          PageSegMode = 9  // Single word in a circle
	PSMSingleChar          PageSegMode = 10 // Single character
	PSMSparseText          PageSegMode = 11 // Find as much text as possible
	PSMSparseTextOSD       PageSegMode = 12 // Sparse text with OSD
	PSMRawLine             PageSegMode = 13 // Treat image as a single raw line
)

// RecognitionConfig is one parsed recognition configuration. The Raw string is
// kept for diagnostics so discarded attempts remain identifiable in output.
type RecognitionConfig struct {
	Raw         string
	PageSegMode PageSegMode
}

// ParseConfig parses a recognition-config string into a RecognitionConfig.
// Accepted forms: "psm6", "psm 6", "--psm 6".
func ParseConfig(s string) (RecognitionConfig, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "--")
	s = strings.TrimPrefix(s, "psm")
	s = strings.TrimSpace(s)

	n, err := strconv.Atoi(s)
	if err != nil {
		return RecognitionConfig{}, fmt.Errorf("invalid recognition config %q: expected a page segmentation mode like \"psm6\"", raw)
	}
	if n < int(PSMOSDOnly) || n > int(PSMRawLine) {
		return RecognitionConfig{}, fmt.Errorf("invalid recognition config %q: page segmentation mode must be between 0 and 13", raw)
	}

	return RecognitionConfig{Raw: raw, PageSegMode: PageSegMode(n)}, nil
}

// ParseConfigs parses an ordered list of recognition-config strings,
// preserving order. It fails on the first invalid entry.
func ParseConfigs(configs []string) ([]RecognitionConfig, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("at least one recognition config is required")
	}

	parsed := make([]RecognitionConfig, 0, len(configs))
	for _, s := range configs {
		cfg, err := ParseConfig(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, cfg)
	}
	return parsed, nil
}
