package llm

import (
	"fmt"
	"strings"
)

// MissingPlaceholderError means a template referenced names that were not supplied.
type MissingPlaceholderError struct {
	Names []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("missing placeholder values: %s", strings.Join(e.Names, ", "))
}

// ExtractionError means the model output held no JSON value matching the shape.
type ExtractionError struct {
	Shape  string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("could not extract %s from model output: %s", e.Shape, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// GenerationError wraps a failed call to the model provider. StatusCode is 0
// when no HTTP response was received.
type GenerationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the call may succeed.
func (e *GenerationError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}
