package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during query evaluation.
//
// Runtime errors include:
//   - Contract violation: the IR broke an invariant the compiler enforces
//     (missing ORDER/COLUMNS key, non-numeric value in a numeric operation,
//     missing value fed to COUNT)
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the column or field involved, if any.
	Key string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeContractViolation indicates the IR broke a compile-time invariant.
	ErrCodeContractViolation RuntimeErrorCode = "CONTRACT_VIOLATION"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsContractViolation returns true if the error is a contract violation.
// Uses errors.As to handle wrapped errors.
func IsContractViolation(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeContractViolation
	}
	return false
}

// contractViolation creates a RuntimeError for a broken IR invariant.
func contractViolation(key, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeContractViolation,
		Message: fmt.Sprintf(format, args...),
		Key:     key,
	}
}
