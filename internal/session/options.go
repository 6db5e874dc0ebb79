package session

import (
	"fmt"
	"log"

	"github.com/ironsheep/ocr-session/internal/imaging"
)

// Default language specs.
const (
	// DefaultLanguages is used by Initialize when called with "".
	DefaultLanguages = "tha+eng"

	// DefaultLazyLanguages is used when Recognize has to create a worker.
	DefaultLazyLanguages = "eng"
)

// FailureMode selects how Recognize reports engine failures.
type FailureMode string

const (
	// FailureSilent reports failures only through Outcome.Err.
	FailureSilent FailureMode = "silent"

	// FailureReturn also returns the failure as the error.
	FailureReturn FailureMode = "return"
)

// ParseFailureMode validates a failure mode name. "" selects FailureSilent.
func ParseFailureMode(s string) (FailureMode, error) {
	switch FailureMode(s) {
	case "", FailureSilent:
		return FailureSilent, nil
	case FailureReturn:
		return FailureReturn, nil
	}
	return "", fmt.Errorf("unknown failure mode %q (want %s or %s)", s, FailureSilent, FailureReturn)
}

// OverlapPolicy selects what happens when Recognize is called while another
// operation is running.
type OverlapPolicy string

const (
	// OverlapSerialize waits for the running operation to finish.
	OverlapSerialize OverlapPolicy = "serialize"

	// OverlapReject fails immediately with ErrBusy.
	OverlapReject OverlapPolicy = "reject"
)

// ParseOverlapPolicy validates an overlap policy name. "" selects
// OverlapSerialize.
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch OverlapPolicy(s) {
	case "", OverlapSerialize:
		return OverlapSerialize, nil
	case OverlapReject:
		return OverlapReject, nil
	}
	return "", fmt.Errorf("unknown overlap policy %q (want %s or %s)", s, OverlapSerialize, OverlapReject)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for recognition failures and debug lines.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDebug enables lifecycle debug logging.
func WithDebug(debug bool) Option {
	return func(s *Session) { s.debug = debug }
}

// WithLoader sets the image loader used to resolve sources.
func WithLoader(l *imaging.Loader) Option {
	return func(s *Session) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithFailureMode sets how recognition failures are reported.
func WithFailureMode(m FailureMode) Option {
	return func(s *Session) { s.failureMode = m }
}

// WithOverlapPolicy sets how overlapping Recognize calls are handled.
func WithOverlapPolicy(p OverlapPolicy) Option {
	return func(s *Session) { s.overlap = p }
}

// WithDefaultLanguages sets the spec Initialize uses when given "".
func WithDefaultLanguages(spec string) Option {
	return func(s *Session) { s.defaultSpec = spec }
}

// WithLazyLanguages sets the spec Recognize uses when it has to create a
// worker itself.
func WithLazyLanguages(spec string) Option {
	return func(s *Session) { s.lazySpec = spec }
}
