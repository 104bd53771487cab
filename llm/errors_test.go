package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("connection refused")

	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantFatal     bool
	}{
		{"transient", NewTransientError(base), true, false},
		{"fatal", NewFatalError(base), false, true},
		{"wrapped transient", fmt.Errorf("attempt 2: %w", NewTransientError(base)), true, false},
		{"wrapped fatal", fmt.Errorf("endpoint x: %w", NewFatalError(base)), false, true},
		{"plain error", base, false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.wantTransient {
				t.Errorf("IsTransient() = %v, want %v", got, tt.wantTransient)
			}
			if got := IsFatal(tt.err); got != tt.wantFatal {
				t.Errorf("IsFatal() = %v, want %v", got, tt.wantFatal)
			}
		})
	}
}

func TestMalformedResponseError(t *testing.T) {
	err := NewMalformedResponseError("decode object: %v", "unexpected token")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("errors.Is(err, ErrMalformedResponse) = false for %v", err)
	}

	wrapped := fmt.Errorf("skeleton stage: %w", err)
	if !errors.Is(wrapped, ErrMalformedResponse) {
		t.Errorf("wrapped error lost the sentinel: %v", wrapped)
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("boom")
	if got := errors.Unwrap(NewTransientError(base)); got != base {
		t.Errorf("Unwrap(transient) = %v, want %v", got, base)
	}
	if got := errors.Unwrap(NewFatalError(base)); got != base {
		t.Errorf("Unwrap(fatal) = %v, want %v", got, base)
	}
}
