package compiler

import (
	"errors"
	"fmt"
)

// Validation error codes (E200-E299)
const (
	// Query shape errors (E200-E204)
	ErrQueryShape          = "E200" // top level is not {WHERE, OPTIONS[, TRANSFORMATIONS]}
	ErrFilterShape         = "E201" // malformed WHERE filter
	ErrOptionsShape        = "E202" // malformed OPTIONS, COLUMNS or ORDER
	ErrTransformationShape = "E203" // malformed TRANSFORMATIONS, GROUP or APPLY
	ErrLiteralType         = "E204" // comparison literal has the wrong type

	// Key errors (E210-E214)
	ErrInvalidKey       = "E210" // key is not "<id>_<field>" with a known field
	ErrKeyType          = "E211" // numeric key expected, string key given (or reverse)
	ErrMultipleDatasets = "E212" // keys reference more than one dataset id
	ErrMultipleKinds    = "E213" // keys reference more than one record kind
	ErrNoDataset        = "E214" // no key ever resolved a dataset

	// Cross-reference errors (E220-E224)
	ErrWildcard          = "E220" // '*' inside an IS pattern
	ErrAggregationName   = "E221" // empty, underscored or duplicate APPLY name
	ErrApplyToken        = "E222" // unknown APPLY operator
	ErrOrderNotInColumns = "E223" // ORDER key missing from COLUMNS
	ErrColumnNotGrouped  = "E224" // aggregate COLUMNS key not in GROUP or APPLY
)

// ValidationError is a grammar, typing or cross-reference violation found
// while compiling a query. Path is rendered like "QUERY.WHERE.AND[0].GT".
type ValidationError struct {
	Code   string `json:"code"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("Parsing query failed at %s: %s", e.Path, e.Reason)
}

// IsValidationError checks if an error is a query validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationCode returns the code of a validation error, or "" if err is not
// one.
func ValidationCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
