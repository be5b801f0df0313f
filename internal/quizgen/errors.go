package quizgen

import (
	"errors"
	"fmt"
)

// Attempt failure kinds. Every one of them is retried.
var (
	// ErrUpstreamUnavailable means the provider gave no usable response.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedContent means the response was not a valid quiz record.
	ErrMalformedContent = errors.New("malformed content")

	// ErrDuplicateContent means the question repeats the last accepted one.
	ErrDuplicateContent = errors.New("duplicate question")

	// ErrUnexpected wraps a panic recovered during an attempt.
	ErrUnexpected = errors.New("unexpected failure")

	// ErrExhausted is wrapped by Result.Err when every attempt failed.
	ErrExhausted = errors.New("retries exhausted")
)

// AttemptError records which attempt failed and why.
type AttemptError struct {
	Attempt int // 1-based
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d: %v", e.Attempt, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// kind returns the short label logged for err.
func kind(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateContent):
		return "duplicate"
	case errors.Is(err, ErrMalformedContent):
		return "malformed"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream"
	default:
		return "unexpected"
	}
}
