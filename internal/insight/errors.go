package insight

import (
	"errors"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/dataset"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/metrics"
	"github.com/roach88/insight/internal/store"
)

// Class is the coarse category of a failed operation.
type Class int

const (
	// ClassNone means no error.
	ClassNone Class = iota
	// ClassInvalid covers malformed queries, bad dataset ids or kinds,
	// duplicate datasets, kind mismatches and invalid record files.
	ClassInvalid
	// ClassTooLarge means the result exceeded the record or group limit.
	ClassTooLarge
	// ClassNotFound means the dataset is not in the catalog.
	ClassNotFound
	// ClassInternal is everything else, including engine contract violations.
	ClassInternal
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassInvalid:
		return "invalid"
	case ClassTooLarge:
		return "too_large"
	case ClassNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Outcome returns the metrics outcome label for c.
func (c Class) Outcome() string {
	switch c {
	case ClassNone:
		return metrics.OutcomeOK
	case ClassInvalid:
		return metrics.OutcomeInvalid
	case ClassTooLarge:
		return metrics.OutcomeTooLarge
	case ClassNotFound:
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeInternal
	}
}

// Classify maps err onto a Class.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	var sourceErr *compiler.SourceError
	var invalidData *dataset.InvalidError
	switch {
	case compiler.IsValidationError(err),
		errors.As(err, &sourceErr),
		errors.As(err, &invalidData),
		store.IsKindMismatch(err),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, ir.ErrInvalidKind):
		return ClassInvalid
	case engine.IsResultTooLarge(err):
		return ClassTooLarge
	case errors.Is(err, store.ErrNotFound):
		return ClassNotFound
	default:
		return ClassInternal
	}
}
