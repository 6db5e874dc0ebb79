package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/ocr-session/internal/imaging"
	"github.com/ironsheep/ocr-session/internal/ocr"
)

// ErrBusy is returned by Recognize under OverlapReject when another
// operation is running.
var ErrBusy = errors.New("session busy: another operation is in progress")

// Outcome is the result of a Recognize call. Err distinguishes a failed
// recognition from one that found no text.
type Outcome struct {
	// Text is the recognized text. Empty on failure.
	Text string `json:"text"`

	// Confidence is the engine's confidence score, 0-100. Zero on failure.
	Confidence float64 `json:"confidence"`

	// Regions holds word boxes in the coordinates of the original image.
	Regions []ocr.TextRegion `json:"regions"`

	// Source is the kind of image source recognized.
	Source string `json:"source"`

	// Languages is the spec of the worker that ran the recognition.
	Languages string `json:"languages"`

	// Duration is the time spent loading and recognizing the image.
	Duration time.Duration `json:"duration_ns"`

	// Err is the recognition failure, nil on success.
	Err error `json:"-"`
}

// OK reports whether the recognition succeeded.
func (o *Outcome) OK() bool {
	return o != nil && o.Err == nil
}

// Session owns at most one OCR worker. The zero value is not usable; create
// Sessions with New.
type Session struct {
	engine      ocr.Engine
	loader      *imaging.Loader
	logger      *log.Logger
	debug       bool
	failureMode FailureMode
	overlap     OverlapPolicy
	defaultSpec string
	lazySpec    string
	defaultLang []string
	lazyLang    []string

	// slot holds a token while an operation runs.
	slot chan struct{}

	mu        sync.RWMutex
	worker    ocr.Worker
	state     State
	observers map[int]chan State
	nextObs   int
}

// New creates a Session backed by engine. No worker is created until
// Initialize or Recognize is called.
func New(engine ocr.Engine, opts ...Option) (*Session, error) {
	if engine == nil {
		return nil, errors.New("session: nil engine")
	}

	s := &Session{
		engine:      engine,
		logger:      log.Default(),
		failureMode: FailureSilent,
		overlap:     OverlapSerialize,
		defaultSpec: DefaultLanguages,
		lazySpec:    DefaultLazyLanguages,
		slot:        make(chan struct{}, 1),
		observers:   make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := ParseFailureMode(string(s.failureMode)); err != nil {
		return nil, err
	}
	if _, err := ParseOverlapPolicy(string(s.overlap)); err != nil {
		return nil, err
	}

	var err error
	if s.defaultLang, err = ocr.ParseLanguages(s.defaultSpec); err != nil {
		return nil, fmt.Errorf("default languages: %w", err)
	}
	if s.lazyLang, err = ocr.ParseLanguages(s.lazySpec); err != nil {
		return nil, fmt.Errorf("lazy languages: %w", err)
	}
	if s.loader == nil {
		s.loader = imaging.NewLoader(nil, 0)
	}

	return s, nil
}

// Initialize creates a worker for the given language spec, releasing any
// existing worker first. An empty spec selects the default languages.
//
// A failure to release the previous worker is logged and does not stop the
// new one from being created. A failure to create the new worker is returned
// and leaves the Session without a worker.
func (s *Session) Initialize(ctx context.Context, spec string) error {
	langs := s.defaultLang
	if spec != "" {
		var err error
		if langs, err = ocr.ParseLanguages(spec); err != nil {
			return err
		}
	}

	if err := s.acquire(ctx, false); err != nil {
		return err
	}
	defer s.release()

	return s.initialize(ctx, langs)
}

// Recognize runs OCR on src. See RecognizeWith.
func (s *Session) Recognize(ctx context.Context, src imaging.Source) (*Outcome, error) {
	return s.RecognizeWith(ctx, src, imaging.Preprocess{})
}

// RecognizeWith runs OCR on src after applying the preprocessing steps in
// pre.
//
// If the Session has no worker one is created with the lazy languages first;
// a failure to create it is returned as an error. IsRecognizing is true
// from the moment the worker is in place until the call returns.
//
// On success Text and Confidence are updated and the returned Outcome
// carries the result. On failure they are left unchanged, the failure is
// logged, and the Outcome carries it in Err. The error return is nil for
// recognition failures unless the Session uses FailureReturn.
func (s *Session) RecognizeWith(ctx context.Context, src imaging.Source, pre imaging.Preprocess) (*Outcome, error) {
	if err := s.acquire(ctx, s.overlap == OverlapReject); err != nil {
		return nil, err
	}
	defer s.release()

	worker := s.currentWorker()
	if worker == nil {
		if s.debug {
			s.logger.Printf("session: no worker, initializing with %s", ocr.JoinLanguages(s.lazyLang))
		}
		if err := s.initialize(ctx, s.lazyLang); err != nil {
			return nil, err
		}
		worker = s.currentWorker()
	}

	out := &Outcome{Languages: ocr.JoinLanguages(worker.Languages())}
	if src != nil {
		out.Source = src.Kind()
	}

	var result *ocr.Result
	s.begin()
	defer func() { s.finish(result) }()

	start := time.Now()
	result, err := s.run(ctx, worker, src, pre)
	out.Duration = time.Since(start)

	if err != nil {
		s.logger.Printf("OCR error: %v", err)
		out.Err = err
		out.Regions = []ocr.TextRegion{}
		if s.failureMode == FailureReturn {
			return out, fmt.Errorf("recognition failed: %w", err)
		}
		return out, nil
	}

	out.Text = result.Text
	out.Confidence = result.Confidence
	out.Regions = result.Regions
	return out, nil
}

// Terminate releases the worker. It is a no-op when there is none.
//
// The worker is dropped even if releasing it fails; the failure is returned.
func (s *Session) Terminate(ctx context.Context) error {
	if err := s.acquire(ctx, false); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	w := s.worker
	if w == nil {
		s.mu.Unlock()
		return nil
	}
	s.worker = nil
	s.state.Initialized = false
	s.state.Languages = ""
	s.state.WorkerID = ""
	s.publish()
	s.mu.Unlock()

	cache := s.loader.Cache()
	if s.debug {
		s.logger.Printf("session: terminating %s worker (%s), dropping %d cached images",
			s.engine.Name(), ocr.JoinLanguages(w.Languages()), cache.Len())
	}
	cache.Clear()
	if err := w.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate worker: %w", err)
	}
	return nil
}

// Text returns the text of the most recent successful recognition.
func (s *Session) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Text
}

// Confidence returns the confidence of the most recent successful
// recognition.
func (s *Session) Confidence() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Confidence
}

// IsRecognizing reports whether a Recognize call is running.
func (s *Session) IsRecognizing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Recognizing
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// initialize swaps in a new worker. The caller holds the slot.
func (s *Session) initialize(ctx context.Context, langs []string) error {
	s.mu.Lock()
	prev := s.worker
	s.worker = nil
	if prev != nil {
		s.state.Initialized = false
		s.state.Languages = ""
		s.state.WorkerID = ""
		s.publish()
	}
	s.mu.Unlock()

	if prev != nil {
		if err := prev.Terminate(); err != nil {
			s.logger.Printf("session: failed to release previous worker: %v", err)
		}
	}

	spec := ocr.JoinLanguages(langs)
	w, err := s.engine.NewWorker(ctx, langs)
	if err != nil {
		return fmt.Errorf("failed to create %s worker for %q: %w", s.engine.Name(), spec, err)
	}

	s.mu.Lock()
	s.worker = w
	s.state.Initialized = true
	s.state.Languages = spec
	s.state.WorkerID = uuid.NewString()
	id := s.state.WorkerID
	s.publish()
	s.mu.Unlock()

	if s.debug {
		s.logger.Printf("session: %s worker %s ready (%s)", s.engine.Name(), id, spec)
	}
	return nil
}

// run loads the source and hands it to the worker.
func (s *Session) run(ctx context.Context, w ocr.Worker, src imaging.Source, pre imaging.Preprocess) (*ocr.Result, error) {
	prepared, err := s.loader.Prepare(ctx, src, pre)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	result, err := w.Recognize(ctx, prepared.Data)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("engine returned no result")
	}

	for i := range result.Regions {
		b := &result.Regions[i].Bounds
		b.X1, b.Y1 = prepared.ToSource(b.X1, b.Y1)
		b.X2, b.Y2 = prepared.ToSource(b.X2, b.Y2)
	}
	return result, nil
}

func (s *Session) currentWorker() ocr.Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worker
}

func (s *Session) begin() {
	s.mu.Lock()
	s.state.Recognizing = true
	s.publish()
	s.mu.Unlock()
}

// finish clears the busy flag and, on success, records the result in the
// same state change.
func (s *Session) finish(result *ocr.Result) {
	s.mu.Lock()
	if result != nil {
		s.state.Text = result.Text
		s.state.Confidence = result.Confidence
	}
	s.state.Recognizing = false
	s.publish()
	s.mu.Unlock()
}

// acquire takes the operation slot. With reject set it fails fast with
// ErrBusy instead of waiting.
func (s *Session) acquire(ctx context.Context, reject bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reject {
		select {
		case s.slot <- struct{}{}:
			return nil
		default:
			return ErrBusy
		}
	}
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() {
	<-s.slot
}
