package session

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"

	"github.com/ironsheep/ocr-session/internal/ocr"
)

// fakeEngine records worker creation and lets tests script recognition.
type fakeEngine struct {
	mu      sync.Mutex
	created [][]string
	workers []*fakeWorker

	newErr       error
	terminateErr error
	recognize    func(ctx context.Context, image []byte) (*ocr.Result, error)
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) NewWorker(ctx context.Context, languages []string) (ocr.Worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.newErr != nil {
		return nil, e.newErr
	}
	w := &fakeWorker{engine: e, languages: languages}
	e.created = append(e.created, languages)
	e.workers = append(e.workers, w)
	return w, nil
}

func (e *fakeEngine) createdCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.created)
}

func (e *fakeEngine) worker(i int) *fakeWorker {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workers[i]
}

type fakeWorker struct {
	engine    *fakeEngine
	languages []string

	mu         sync.Mutex
	terminated bool
	calls      int
}

func (w *fakeWorker) Languages() []string { return w.languages }

func (w *fakeWorker) Recognize(ctx context.Context, image []byte) (*ocr.Result, error) {
	w.mu.Lock()
	if w.terminated {
		w.mu.Unlock()
		return nil, ocr.ErrTerminated
	}
	w.calls++
	w.mu.Unlock()

	w.engine.mu.Lock()
	fn := w.engine.recognize
	w.engine.mu.Unlock()
	if fn == nil {
		return &ocr.Result{Text: "HELLO", Confidence: 87}, nil
	}
	return fn(ctx, image)
}

func (w *fakeWorker) Terminate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.terminated = true
	return w.engine.terminateErr
}

func (w *fakeWorker) isTerminated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.terminated
}

// syncBuffer is a bytes.Buffer safe for a logger and a test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestSession creates a Session whose log output is captured.
func newTestSession(t *testing.T, engine *fakeEngine, opts ...Option) (*Session, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	opts = append([]Option{WithLogger(log.New(logs, "", 0))}, opts...)
	s, err := New(engine, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, logs
}

var errEngine = errors.New("engine exploded")
