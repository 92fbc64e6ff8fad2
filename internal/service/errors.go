package service

import (
	"errors"
	"fmt"
)

// Pipeline and API error kinds. Every stage of the generation pipeline fails
// with its own kind so callers can report the failing collaborator; none of
// them is retried.
var (
	// ErrEmptyResponse is returned when the model reply carries no text.
	ErrEmptyResponse = errors.New("model response contained no text content")

	// ErrNoQuestions is returned when the model reply parses to an empty list.
	ErrNoQuestions = errors.New("model returned an empty question list")

	// ErrQuizNotFound is returned when no quiz exists under the given id.
	ErrQuizNotFound = errors.New("quiz not found")

	// ErrQuizForbidden is returned when the quiz exists but belongs to
	// another user. Distinct from ErrQuizNotFound on purpose.
	ErrQuizForbidden = errors.New("quiz belongs to another user")

	// ErrInvalidCredentials is returned on login with a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AcquisitionError signals that no audio artifact could be produced for a URL.
type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("audio acquisition failed for %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// TranscriptionError signals an empty or failed transcript.
type TranscriptionError struct {
	AudioPath string
	Err       error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed for %s: %v", e.AudioPath, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// GenerationError signals a model or transport failure while generating questions.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MalformedResponseError signals that the model reply could not be parsed or
// violated the question schema. Preview is a bounded excerpt of the
// offending text, for diagnostics only.
type MalformedResponseError struct {
	Reason  string
	Preview string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Preview != "" {
		return fmt.Sprintf("malformed model response: %s (preview: %q)", e.Reason, e.Preview)
	}
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ValidationError reports a per-field request problem, rejected before any
// side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
