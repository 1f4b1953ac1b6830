package compiler

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/insight/internal/queryir"
)

// CompileValue compiles a query written in CUE.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value must be concrete. It is exported to JSON first, so CUE queries
// go through exactly the same grammar as JSON ones:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`WHERE: {}, OPTIONS: COLUMNS: ["sections_dept"]`)
//	q, err := CompileValue(v)
func CompileValue(v cue.Value) (queryir.Query, error) {
	raw, err := ExportValue(v)
	if err != nil {
		return nil, err
	}
	return Compile(raw)
}

// ExportValue converts a concrete CUE value into the raw query shape Compile
// accepts (maps, slices, float64 and strings).
func ExportValue(v cue.Value) (any, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode CUE query: %w", err)
	}
	return raw, nil
}

// SourceError is a CUE evaluation error with position info.
type SourceError struct {
	Message string
	Pos     token.Pos
}

func (e *SourceError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &SourceError{
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
