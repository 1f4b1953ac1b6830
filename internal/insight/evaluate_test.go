package insight

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/store"
	"github.com/roach88/insight/internal/testutil"
)

func rawQuery(t *testing.T, src string) any {
	t.Helper()
	var raw any
	require.NoError(t, json.Unmarshal([]byte(src), &raw))
	return raw
}

// fixedProvider serves records for exactly one dataset id and kind.
func fixedProvider(id string, kind ir.Kind, records []ir.Record) RecordProvider {
	return RecordProviderFunc(func(_ context.Context, gotID string, gotKind ir.Kind) ([]ir.Record, error) {
		if gotID != id {
			return nil, store.ErrNotFound
		}
		if gotKind != kind {
			return nil, &store.KindMismatchError{ID: gotID, Stored: kind, Requested: gotKind}
		}
		return records, nil
	})
}

func TestEvaluate_CompilesLoadsAndRuns(t *testing.T) {
	records := []ir.Record{
		testutil.Section(map[string]any{"dept": "cpsc", "avg": 95}),
		testutil.Section(map[string]any{"dept": "math", "avg": 80}),
	}
	var askedID string
	var askedKind ir.Kind
	provider := RecordProviderFunc(func(_ context.Context, id string, kind ir.Kind) ([]ir.Record, error) {
		askedID, askedKind = id, kind
		return records, nil
	})

	rows, err := Evaluate(t.Context(), rawQuery(t, `{
		"WHERE": {"GT": {"courses_avg": 90}},
		"OPTIONS": {"COLUMNS": ["courses_dept"]}
	}`), provider)
	require.NoError(t, err)

	assert.Equal(t, "courses", askedID)
	assert.Equal(t, ir.KindSections, askedKind)
	assert.Equal(t, []ir.Record{{"courses_dept": ir.String("cpsc")}}, rows)
}

func TestEvaluate_ValidationErrorSkipsProvider(t *testing.T) {
	provider := RecordProviderFunc(func(context.Context, string, ir.Kind) ([]ir.Record, error) {
		t.Fatal("provider must not be called for an invalid query")
		return nil, nil
	})

	_, err := Evaluate(t.Context(), rawQuery(t, `{"WHERE": {}}`), provider)
	require.Error(t, err)
	assert.True(t, compiler.IsValidationError(err))
	assert.Equal(t, ClassInvalid, Classify(err))
}

func TestEvaluate_ProviderErrors(t *testing.T) {
	provider := fixedProvider("rooms", ir.KindRooms, testutil.Rooms(2))

	_, err := Evaluate(t.Context(), rawQuery(t, `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["other_seats"]}}`), provider)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, ClassNotFound, Classify(err))

	_, err = Evaluate(t.Context(), rawQuery(t, `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["rooms_avg"]}}`), provider)
	assert.True(t, store.IsKindMismatch(err))
	assert.Equal(t, ClassInvalid, Classify(err))
}

func TestEvaluate_EngineOptions(t *testing.T) {
	provider := fixedProvider("rooms", ir.KindRooms, testutil.Rooms(3))
	raw := rawQuery(t, `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["rooms_name"]}}`)

	_, err := Evaluate(t.Context(), raw, provider, engine.WithMaxResults(2))
	require.Error(t, err)
	assert.True(t, engine.IsResultTooLarge(err))
	assert.Equal(t, ClassTooLarge, Classify(err))

	rows, err := Evaluate(t.Context(), raw, provider, engine.WithMaxResults(3))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestEvaluate_DefaultLimit(t *testing.T) {
	provider := fixedProvider("courses", ir.KindSections, testutil.Sections(engine.DefaultMaxResults+1))

	_, err := Evaluate(t.Context(), rawQuery(t, `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["courses_uuid"]}}`), provider)
	assert.True(t, engine.IsResultTooLarge(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassNone},
		{"invalid id", store.ValidateID("a_b"), ClassInvalid},
		{"duplicate", store.ErrDuplicate, ClassInvalid},
		{"invalid kind", ir.ErrInvalidKind, ClassInvalid},
		{"not found", store.ErrNotFound, ClassNotFound},
		{"too large", &engine.ResultTooLargeError{Limit: 1, Count: 2}, ClassTooLarge},
		{"contract", &engine.RuntimeError{Code: engine.ErrCodeContractViolation}, ClassInternal},
		{"other", errors.New("disk on fire"), ClassInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClass_Outcome(t *testing.T) {
	assert.Equal(t, "ok", ClassNone.Outcome())
	assert.Equal(t, "too_large", ClassTooLarge.Outcome())
	assert.Equal(t, "internal", ClassInternal.Outcome())
	assert.Equal(t, "not_found", ClassNotFound.String())
}
