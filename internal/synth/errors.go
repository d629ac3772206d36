package synth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProvider means no provider has credentials. Raised before any network call.
	ErrNoProvider = errors.New("synth: no language model provider configured")

	// ErrInvalidResponse covers parse and validation failures of model output.
	ErrInvalidResponse = errors.New("synth: invalid model response")
)

// ValidationError lists schema findings. Errors block acceptance; warnings
// are informational and carried for logging.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidResponse, strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidResponse
}

// ExhaustedError is a single provider failing every attempt.
type ExhaustedError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Provider, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// FailoverError is the fatal outcome: the primary exhausted its retries and
// the single fallback call failed too.
type FailoverError struct {
	Primary     string
	Fallback    string
	PrimaryErr  error
	FallbackErr error
}

func (e *FailoverError) Error() string {
	return fmt.Sprintf("synthesis failed: primary %s: %v; fallback %s: %v",
		e.Primary, e.PrimaryErr, e.Fallback, e.FallbackErr)
}

func (e *FailoverError) Unwrap() []error {
	return []error{e.PrimaryErr, e.FallbackErr}
}
