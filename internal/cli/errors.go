package cli

import (
	"errors"
	"io/fs"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/dataset"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/insight"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/store"
)

// Error code constants - unified across all CLI commands.
// Query validation failures report the compiler's own E2xx code.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeConfig         = "E002" // Invalid configuration
	ErrCodeReadFailed     = "E003" // Input file could not be read or parsed
	ErrCodeNotFound       = "E004" // Path or dataset not found
	ErrCodeDatabase       = "E005" // Catalog could not be opened
	ErrCodeWriteFailed    = "E006" // File write error
	ErrCodeInvalidDataset = "E007" // Bad dataset id, kind or record file
	ErrCodeDuplicate      = "E008" // Dataset id already in the catalog
	ErrCodeKindMismatch   = "E009" // Query kind differs from stored kind

	ErrCodeTooLarge = "E300" // Result exceeded the record/group limit
	ErrCodeInternal = "E500" // Engine contract violation
)

// codeFor returns the CLI error code for err.
func codeFor(err error) string {
	if code := compiler.ValidationCode(err); code != "" {
		return code
	}

	var sourceErr *compiler.SourceError
	var invalidData *dataset.InvalidError
	var loadErr *LoadError
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code
	case errors.As(err, &sourceErr):
		return ErrCodeReadFailed
	case errors.As(err, &invalidData),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, ir.ErrInvalidKind):
		return ErrCodeInvalidDataset
	case errors.Is(err, store.ErrDuplicate):
		return ErrCodeDuplicate
	case store.IsKindMismatch(err):
		return ErrCodeKindMismatch
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	case engine.IsResultTooLarge(err):
		return ErrCodeTooLarge
	case engine.IsContractViolation(err):
		return ErrCodeInternal
	default:
		return ErrCodeGeneric
	}
}

// exitCodeFor returns ExitFailure for rejected input and ExitCommandError
// for everything else.
func exitCodeFor(err error) int {
	switch insight.Classify(err) {
	case insight.ClassInvalid, insight.ClassTooLarge, insight.ClassNotFound:
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// reportError writes err through the formatter and returns the matching
// ExitError.
func reportError(formatter *OutputFormatter, message string, err error) error {
	_ = formatter.Error(codeFor(err), err.Error(), errorDetails(err))
	exitErr := WrapExitError(exitCodeFor(err), message, err)
	exitErr.reported = true
	return exitErr
}

// errorDetails returns structured context for errors that carry it.
func errorDetails(err error) any {
	var vErr *compiler.ValidationError
	if errors.As(err, &vErr) {
		return map[string]string{"path": vErr.Path, "reason": vErr.Reason}
	}
	var tooLarge *engine.ResultTooLargeError
	if errors.As(err, &tooLarge) {
		return map[string]any{"limit": tooLarge.Limit, "grouped": tooLarge.Grouped}
	}
	var invalidData *dataset.InvalidError
	if errors.As(err, &invalidData) {
		return invalidData.Problems
	}
	return nil
}
