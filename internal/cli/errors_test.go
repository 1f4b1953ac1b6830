package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/dataset"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/store"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &compiler.ValidationError{Code: compiler.ErrWildcard, Path: "QUERY.WHERE.IS"}, compiler.ErrWildcard},
		{"load", &LoadError{Code: ErrCodeNotFound, Message: "x"}, ErrCodeNotFound},
		{"cue source", &compiler.SourceError{Message: "bad"}, ErrCodeReadFailed},
		{"invalid records", &dataset.InvalidError{Kind: ir.KindRooms}, ErrCodeInvalidDataset},
		{"invalid id", fmt.Errorf("%w: %q", store.ErrInvalidID, "a_b"), ErrCodeInvalidDataset},
		{"invalid kind", fmt.Errorf("%w %q", ir.ErrInvalidKind, "x"), ErrCodeInvalidDataset},
		{"duplicate", fmt.Errorf("%w: %q", store.ErrDuplicate, "a"), ErrCodeDuplicate},
		{"kind mismatch", &store.KindMismatchError{ID: "a", Stored: ir.KindRooms, Requested: ir.KindSections}, ErrCodeKindMismatch},
		{"not found", fmt.Errorf("load dataset %q: %w", "a", store.ErrNotFound), ErrCodeNotFound},
		{"too large", &engine.ResultTooLargeError{Limit: 5000}, ErrCodeTooLarge},
		{"generic", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codeFor(tt.err))
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitFailure, exitCodeFor(&compiler.ValidationError{Code: compiler.ErrQueryShape}))
	assert.Equal(t, ExitFailure, exitCodeFor(&engine.ResultTooLargeError{Limit: 1}))
	assert.Equal(t, ExitFailure, exitCodeFor(store.ErrNotFound))
	assert.Equal(t, ExitCommandError, exitCodeFor(errors.New("disk on fire")))
	assert.Equal(t, ExitCommandError, exitCodeFor(&LoadError{Code: ErrCodeReadFailed}))
}

func TestErrorDetails(t *testing.T) {
	details := errorDetails(&compiler.ValidationError{Code: compiler.ErrInvalidKey, Path: "QUERY.OPTIONS.COLUMNS[0]", Reason: "bad key"})
	assert.Equal(t, map[string]string{"path": "QUERY.OPTIONS.COLUMNS[0]", "reason": "bad key"}, details)

	details = errorDetails(&engine.ResultTooLargeError{Limit: 5000, Grouped: true})
	assert.Equal(t, map[string]any{"limit": 5000, "grouped": true}, details)

	assert.Nil(t, errorDetails(errors.New("plain")))
}
