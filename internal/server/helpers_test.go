package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/ocr-session/internal/ocr"
	"github.com/ironsheep/ocr-session/internal/session"
)

// fakeEngine hands out workers that return a fixed result or err.
type fakeEngine struct {
	mu      sync.Mutex
	created int
	result  *ocr.Result
	err     error
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) NewWorker(ctx context.Context, languages []string) (ocr.Worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created++
	return &fakeWorker{engine: e, languages: languages}, nil
}

func (e *fakeEngine) createdCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.created
}

type fakeWorker struct {
	engine    *fakeEngine
	languages []string
}

func (w *fakeWorker) Languages() []string { return w.languages }

func (w *fakeWorker) Recognize(ctx context.Context, image []byte) (*ocr.Result, error) {
	if w.engine.err != nil {
		return nil, w.engine.err
	}
	if w.engine.result != nil {
		return w.engine.result, nil
	}
	return &ocr.Result{
		Text:       "HELLO",
		Confidence: 87,
		Regions: []ocr.TextRegion{
			{Text: "HELLO", Confidence: 0.87, Bounds: ocr.Bounds{X1: 2, Y1: 3, X2: 40, Y2: 15}},
		},
	}, nil
}

func (w *fakeWorker) Terminate() error { return nil }

// newTestServer creates a Server around a Session on engine with logging
// discarded.
func newTestServer(t *testing.T, engine *fakeEngine, opts ...session.Option) (*Server, *session.Session) {
	t.Helper()
	opts = append([]session.Option{session.WithLogger(log.New(io.Discard, "", 0))}, opts...)
	sess, err := session.New(engine, opts...)
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	return New(sess, "", "test"), sess
}

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  raw,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// toolResult decodes the JSON text content of a successful tool response.
func toolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one item, got %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
}
