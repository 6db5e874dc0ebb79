package ocr

import (
	"fmt"
	"os"
	"path/filepath"
)

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available    bool   `json:"available"`
	Version      string `json:"version,omitempty"`
	Error        string `json:"error,omitempty"`
	Backend      string `json:"backend"`
	TessdataPath string `json:"tessdata_path,omitempty"`
}

// checkTessdata verifies that <prefix>/<lang>.traineddata exists for every
// language. An empty prefix defers the check to Tesseract's own search path,
// where a missing language only surfaces on the first recognition.
func checkTessdata(prefix string, langs []string) error {
	if prefix == "" {
		return nil
	}
	info, err := os.Stat(prefix)
	if err != nil {
		return fmt.Errorf("tessdata directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("tessdata path %s is not a directory", prefix)
	}
	for _, lang := range langs {
		path := filepath.Join(prefix, lang+".traineddata")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: no training data for %q in %s", ErrInvalidLanguage, lang, prefix)
		}
	}
	return nil
}
