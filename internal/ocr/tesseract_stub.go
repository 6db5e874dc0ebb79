//go:build !cgo

package ocr

import "context"

const backendName = "gosseract (disabled)"

// TesseractEngine is the stand-in used when the binary is built without cgo.
// Every worker request fails with ErrUnavailable.
type TesseractEngine struct {
	tessdataPrefix string
}

// NewTesseractEngine returns an engine that cannot create workers.
func NewTesseractEngine(tessdataPrefix string) *TesseractEngine {
	return &TesseractEngine{tessdataPrefix: tessdataPrefix}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) NewWorker(ctx context.Context, languages []string) (Worker, error) {
	return nil, ErrUnavailable
}

// GetInfo always reports the engine as unavailable.
func GetInfo(tessdataPrefix string) OCRInfo {
	return OCRInfo{
		Available:    false,
		Error:        ErrUnavailable.Error(),
		Backend:      backendName,
		TessdataPath: tessdataPrefix,
	}
}
