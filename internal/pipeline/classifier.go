package pipeline

// Classifier decides whether a page is text-bearing or image-only based on
// how much extractable text its content stream carries. It is a pure function
// of (text length, threshold); rasterization never happens here.
type Classifier struct {
	minTextThreshold int
}

// NewClassifier creates a page classifier with the given classification
// cutoff in characters.
func NewClassifier(minTextThreshold int) *Classifier {
	return &Classifier{
		minTextThreshold: minTextThreshold,
	}
}

// Classify returns ClassTextBearing when textLength meets the threshold,
// ClassImageOnly otherwise. textLength must already exclude surrounding
// whitespace, so a whitespace-only page classifies image-only and gets an
// OCR attempt instead of producing a near-empty text line.
func (c *Classifier) Classify(textLength int) Classification {
	if textLength >= c.minTextThreshold {
		return ClassTextBearing
	}
	return ClassImageOnly
}
