package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable is returned when the Tesseract engine is not compiled in.
	ErrUnavailable = errors.New("tesseract engine not available (built without cgo)")

	// ErrInvalidLanguage is returned for empty or malformed language specs.
	ErrInvalidLanguage = errors.New("invalid language spec")

	// ErrTerminated is returned when a terminated worker is used.
	ErrTerminated = errors.New("worker terminated")
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the image.
	Bounds Bounds `json:"bounds"`
}

// Result is the output of a single recognition call.
type Result struct {
	// Text is all recognized text with original spacing and newlines.
	Text string `json:"text"`

	// Confidence is the mean word confidence (0 to 100).
	Confidence float64 `json:"confidence"`

	// Regions contains individual words. May be empty if bounding box
	// extraction fails; Text is still populated.
	Regions []TextRegion `json:"regions"`
}

// Engine creates workers configured for a set of languages.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string

	// NewWorker acquires a worker that recognizes the given languages.
	NewWorker(ctx context.Context, languages []string) (Worker, error)
}

// Worker is a loaded, ready-to-use engine instance.
type Worker interface {
	// Languages returns the languages the worker was created with.
	Languages() []string

	// Recognize runs OCR on an encoded image (PNG, JPEG, TIFF, BMP, ...).
	Recognize(ctx context.Context, image []byte) (*Result, error)

	// Terminate releases the worker. Using the worker afterwards returns
	// ErrTerminated.
	Terminate() error
}

// ParseLanguages splits a "+"-joined language spec into Tesseract codes.
//
// Whitespace around codes is ignored. Empty specs, empty components
// ("eng++tha") and codes containing characters other than letters, digits,
// "_" and "-" are rejected with ErrInvalidLanguage.
func ParseLanguages(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidLanguage)
	}

	parts := strings.Split(spec, "+")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("%w: %q has an empty component", ErrInvalidLanguage, spec)
		}
		for _, r := range p {
			if !isLangRune(r) {
				return nil, fmt.Errorf("%w: %q contains %q", ErrInvalidLanguage, p, r)
			}
		}
		langs = append(langs, p)
	}
	return langs, nil
}

// JoinLanguages is the inverse of ParseLanguages.
func JoinLanguages(langs []string) string {
	return strings.Join(langs, "+")
}

func isLangRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// meanConfidence averages word confidences given on a 0-100 scale.
func meanConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}
