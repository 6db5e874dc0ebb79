//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

const backendName = "gosseract"

// TesseractEngine creates gosseract-backed workers.
type TesseractEngine struct {
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// NewTesseractEngine returns an engine whose workers load training data from
// tessdataPrefix. An empty prefix uses Tesseract's compiled-in search path.
func NewTesseractEngine(tessdataPrefix string) *TesseractEngine {
	return &TesseractEngine{
		tessdataPrefix: tessdataPrefix,
		clientFactory:  gosseract.NewClient,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// NewWorker creates a gosseract client configured for languages.
func (e *TesseractEngine) NewWorker(ctx context.Context, languages []string) (Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(languages) == 0 {
		return nil, fmt.Errorf("%w: no languages", ErrInvalidLanguage)
	}
	if err := checkTessdata(e.tessdataPrefix, languages); err != nil {
		return nil, err
	}

	client := e.clientFactory()
	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	langs := make([]string, len(languages))
	copy(langs, languages)
	return &tesseractWorker{client: client, languages: langs}, nil
}

type tesseractWorker struct {
	mu        sync.Mutex
	client    *gosseract.Client
	languages []string
}

func (w *tesseractWorker) Languages() []string {
	return w.languages
}

// Recognize runs full-image OCR and collects word-level regions.
//
// If word-level bounding box extraction fails the text is still returned
// with an empty Regions slice and zero confidence.
func (w *tesseractWorker) Recognize(ctx context.Context, image []byte) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client == nil {
		return nil, ErrTerminated
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := w.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := w.client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := w.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &Result{Text: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	confidences := make([]float64, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		confidences = append(confidences, box.Confidence)
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &Result{
		Text:       text,
		Confidence: meanConfidence(confidences),
		Regions:    regions,
	}, nil
}

func (w *tesseractWorker) Terminate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client == nil {
		return nil
	}
	err := w.client.Close()
	w.client = nil
	if err != nil {
		return fmt.Errorf("failed to close tesseract client: %w", err)
	}
	return nil
}

// GetInfo reports whether Tesseract is usable and which version is linked.
func GetInfo(tessdataPrefix string) OCRInfo {
	info := OCRInfo{
		Backend:      backendName,
		TessdataPath: tessdataPrefix,
	}
	if err := checkTessdata(tessdataPrefix, nil); err != nil {
		info.Error = err.Error()
		return info
	}
	info.Available = true
	info.Version = gosseract.Version()
	return info
}
