package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// renderTextPNG renders text in black on white, scaled up for Tesseract,
// and returns the PNG bytes.
func renderTextPNG(t *testing.T, text string, scale int) []byte {
	t.Helper()

	// basicfont.Face7x13 is 7 pixels wide, 13 pixels tall per character
	w := len(text)*7 + 40
	h := 40

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// skipIfUnavailable skips when the engine is compiled out or Tesseract
// cannot load its language data.
func skipIfUnavailable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	if errors.Is(err, ErrUnavailable) ||
		strings.Contains(err.Error(), "TessBaseAPI") ||
		strings.Contains(err.Error(), "tesseract") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

func newEnglishWorker(t *testing.T) Worker {
	t.Helper()
	w, err := NewTesseractEngine("").NewWorker(context.Background(), []string{"eng"})
	skipIfUnavailable(t, err)
	if err != nil {
		t.Fatalf("NewWorker failed: %v", err)
	}
	t.Cleanup(func() { w.Terminate() })
	return w
}

func TestTesseractEngine_Name(t *testing.T) {
	if got := NewTesseractEngine("").Name(); got != "tesseract" {
		t.Errorf("Name: got %q, want tesseract", got)
	}
}

func TestTesseractEngine_NoLanguages(t *testing.T) {
	_, err := NewTesseractEngine("").NewWorker(context.Background(), nil)
	if err == nil {
		t.Fatal("NewWorker should fail without languages")
	}
	skipIfUnavailable(t, err)
	if !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("error should wrap ErrInvalidLanguage, got %v", err)
	}
}

func TestTesseractEngine_MissingTrainingData(t *testing.T) {
	_, err := NewTesseractEngine(t.TempDir()).NewWorker(context.Background(), []string{"tha", "eng"})
	if err == nil {
		t.Fatal("NewWorker should fail when training data is missing")
	}
	skipIfUnavailable(t, err)
	if !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("error should wrap ErrInvalidLanguage, got %v", err)
	}
}

func TestTesseractEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTesseractEngine("").NewWorker(ctx, []string{"eng"})
	skipIfUnavailable(t, err)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("NewWorker with canceled context: got %v, want context.Canceled", err)
	}
}

func TestWorker_Recognize(t *testing.T) {
	w := newEnglishWorker(t)

	result, err := w.Recognize(context.Background(), renderTextPNG(t, "HELLO WORLD", 4))
	skipIfUnavailable(t, err)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if result == nil {
		t.Fatal("Recognize returned nil result")
	}

	if !strings.Contains(strings.ToUpper(result.Text), "HELLO") {
		t.Logf("OCR text %q does not contain HELLO - may be Tesseract model quality", result.Text)
	}
	if result.Confidence < 0 || result.Confidence > 100 {
		t.Errorf("Confidence %v outside 0-100", result.Confidence)
	}
	for _, r := range result.Regions {
		if r.Text == "" {
			t.Error("empty words should be filtered out")
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("region confidence %v outside 0-1", r.Confidence)
		}
	}
}

func TestWorker_RecognizeInvalidImage(t *testing.T) {
	w := newEnglishWorker(t)

	_, err := w.Recognize(context.Background(), []byte("definitely not an image"))
	if err == nil {
		t.Error("Recognize should fail for invalid image bytes")
	}
}

func TestWorker_Languages(t *testing.T) {
	w := newEnglishWorker(t)
	if got := w.Languages(); len(got) != 1 || got[0] != "eng" {
		t.Errorf("Languages: got %v, want [eng]", got)
	}
}

func TestWorker_TerminateIdempotent(t *testing.T) {
	w := newEnglishWorker(t)

	if err := w.Terminate(); err != nil {
		t.Fatalf("first Terminate failed: %v", err)
	}
	if err := w.Terminate(); err != nil {
		t.Errorf("second Terminate should be a no-op, got %v", err)
	}

	_, err := w.Recognize(context.Background(), renderTextPNG(t, "AFTER", 2))
	if !errors.Is(err, ErrTerminated) {
		t.Errorf("Recognize after Terminate: got %v, want ErrTerminated", err)
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo("")
	if info.Backend == "" {
		t.Error("Backend should always be set")
	}
	if info.Available && info.Version == "" {
		t.Error("available engine should report a version")
	}
	if !info.Available && info.Error == "" {
		t.Error("unavailable engine should report an error")
	}
}

func TestGetInfo_BadTessdataPath(t *testing.T) {
	info := GetInfo("/nonexistent/tessdata")
	if info.Available {
		t.Error("missing tessdata path should not be reported as available")
	}
	if info.TessdataPath != "/nonexistent/tessdata" {
		t.Errorf("TessdataPath: got %q", info.TessdataPath)
	}
}
