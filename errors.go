package imagestudio

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Local      bool  // Refused by the client-side limiter before any backend call
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// isLocalRateLimit reports whether err is a refusal by the client-side limiter.
func isLocalRateLimit(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr) && rlErr.Local
}

// Operation names used in user-facing error messages.
const (
	OpGenerateImage   = "generate image"
	OpEditImage       = "edit image"
	OpSuggestPrompts  = "generate prompt suggestions"
	OpCreateVariation = "create variation"
)

// GenerationError is the single user-facing error produced by the Manager
// for anything that went wrong talking to the backend.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to %s due to an unknown error", e.Op)
	}
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Err.Error())
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError checks if an error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

var (
	// ErrNoImageProduced is returned when every backend call came back without an image.
	ErrNoImageProduced = errors.New("no image was generated; the response may have been blocked or contain no image data")

	// ErrMalformedResponse is returned when a JSON answer from the backend cannot be used.
	ErrMalformedResponse = errors.New("invalid response format from API")

	// ErrAdvisorNotConfigured is returned when prompt suggestions are requested
	// from a manager whose provider cannot answer text questions.
	ErrAdvisorNotConfigured = errors.New("prompt advisor not configured")

	// ErrStorageNotConfigured is returned when storage operations are attempted
	// without a configured storage backend.
	ErrStorageNotConfigured = errors.New("storage not configured")
)
