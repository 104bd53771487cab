package llm

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a model reply with no extractable JSON, or
// JSON that does not parse. Every call site treats this as recoverable:
// stages substitute their fallback value, never surface the raw error.
var ErrMalformedResponse = errors.New("malformed model response")

// NewMalformedResponseError wraps detail onto ErrMalformedResponse so
// errors.Is(err, ErrMalformedResponse) holds for callers.
func NewMalformedResponseError(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrMalformedResponse)...)
}

// TransientError represents a temporary transport failure that may
// succeed on retry (rate limits, 5xx, network errors).
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent failure that should not be retried
// (auth failures, bad requests, unknown providers).
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
