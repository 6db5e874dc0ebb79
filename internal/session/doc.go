// Package session manages the lifecycle of a single OCR worker and exposes
// the result of the most recent recognition as observable state.
//
// A Session starts without a worker. Initialize creates one for a language
// spec; Recognize creates one lazily (with the lazy language, "eng" by
// default) if none exists; Terminate releases it. A terminated Session can
// be used again: the next Initialize or Recognize creates a fresh worker.
//
// # State
//
// Three values are observable at any time from any goroutine:
//   - Text: the text of the most recent successful recognition ("" at first)
//   - Confidence: its confidence score, 0-100 (0 at first)
//   - IsRecognizing: true only while a Recognize call is running
//
// Subscribe delivers a State snapshot after every change.
//
// # Failures
//
// Initialization and termination failures are returned to the caller.
// Recognition failures are always logged and never touch Text or
// Confidence. Whether they are also returned as an error depends on the
// FailureMode: FailureSilent (the default) reports them only through
// Outcome.Err, FailureReturn returns them as the error as well.
//
// # Concurrency
//
// Only one operation runs at a time. Initialize and Terminate wait for the
// running operation to finish. Recognize either waits (OverlapSerialize, the
// default) or fails with ErrBusy (OverlapReject). Waiting honors the context;
// a recognition that has reached the engine cannot be canceled.
package session
