// Package ocr adapts the Tesseract OCR engine (via gosseract/v2) to a small
// worker lifecycle: create a worker for a language spec, recognize images with
// it, and terminate it.
//
// # Prerequisites
//
// Tesseract must be installed on the system and the binary built with CGO:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language in a spec:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng tesseract-ocr-tha
//
// Without CGO the package still compiles; the engine returns ErrUnavailable
// for every worker it is asked to create.
//
// # Language Specs
//
// A language spec joins Tesseract language codes with "+":
//   - "eng" - English only
//   - "tha+eng" - Thai and English
//   - "deu+fra" - German and French
//
// ParseLanguages splits and validates a spec.
//
// # Workers
//
// A Worker holds one configured gosseract client. Workers are not shared;
// each call is guarded by the worker's own mutex, but callers are expected
// to serialize access anyway (see package session).
//
// # Confidence
//
// Result.Confidence is the mean word confidence reported by Tesseract, in
// the range 0-100. Individual TextRegion confidences are normalized to 0-1.
package ocr
