package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomsQuery(where map[string]any, columns ...string) map[string]any {
	cols := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = c
	}
	return map[string]any{
		"WHERE":   where,
		"OPTIONS": map[string]any{"COLUMNS": cols},
	}
}

func TestRun_InlineRecords(t *testing.T) {
	scenario := &Scenario{
		Name: "inline",
		Datasets: []DatasetStep{
			{
				ID:   "rooms",
				Kind: "rooms",
				Records: []map[string]any{
					{
						"fullname": "Hugh Dempster Pavilion", "shortname": "DMP", "number": "110",
						"name": "DMP_110", "address": "6245 Agronomy Road", "type": "Tiered Large Group",
						"furniture": "Classroom-Fixed Tablets", "href": "http://example.com",
						"lat": 49.26125, "lon": -123.24807, "seats": 120, // YAML-style int
					},
				},
			},
		},
		Query: roomsQuery(map[string]any{"GT": map[string]any{"rooms_seats": 100}}, "rooms_name", "rooms_seats"),
		Assertions: []Assertion{
			{Type: AssertRowsEqual, Rows: []map[string]any{{"rooms_name": "DMP_110", "rooms_seats": 120}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Nil(t, result.Error)
	assert.Equal(t, []map[string]any{{"rooms_name": "DMP_110", "rooms_seats": float64(120)}}, result.Rows)
}

func TestRun_GeneratedRecords(t *testing.T) {
	scenario := &Scenario{
		Name:     "generated",
		Datasets: []DatasetStep{{ID: "rooms", Kind: "rooms", Generate: 25}},
		Query:    roomsQuery(map[string]any{"LT": map[string]any{"rooms_seats": 10}}, "rooms_name"),
		Assertions: []Assertion{
			{Type: AssertRowCount, Count: 10},
			{Type: AssertColumns, Keys: []string{"rooms_name"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_MaxResults(t *testing.T) {
	scenario := &Scenario{
		Name:       "limited",
		MaxResults: 5,
		Datasets:   []DatasetStep{{ID: "rooms", Kind: "rooms", Generate: 6}},
		Query:      roomsQuery(map[string]any{}, "rooms_name"),
		Assertions: []Assertion{{Type: AssertError, Class: "too_large"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	require.NotNil(t, result.Error)
	assert.Equal(t, "too_large", result.Error.Class)
	assert.Contains(t, result.Error.Message, "limit is 5")
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:       "unexpected",
		Query:      roomsQuery(map[string]any{}, "rooms_name"),
		Assertions: []Assertion{{Type: AssertRowCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "query failed unexpectedly (not_found)")
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	scenario := &Scenario{
		Name:       "no-error",
		Datasets:   []DatasetStep{{ID: "rooms", Kind: "rooms", Generate: 2}},
		Query:      roomsQuery(map[string]any{}, "rooms_name"),
		Assertions: []Assertion{{Type: AssertError, Class: "invalid"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "query succeeded with 2 rows")
}

func TestRun_ValidationCode(t *testing.T) {
	scenario := &Scenario{
		Name:       "bad-query",
		Query:      map[string]any{"WHERE": map[string]any{}},
		Assertions: []Assertion{{Type: AssertError, Class: "invalid", Code: "E200"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "E200", result.Error.Code)
}

func TestRun_SetupFailures(t *testing.T) {
	tests := []struct {
		name     string
		datasets []DatasetStep
		wantErr  string
	}{
		{
			name:     "invalid inline records",
			datasets: []DatasetStep{{ID: "rooms", Kind: "rooms", Records: []map[string]any{{"name": "x"}}}},
			wantErr:  "dataset invalid against rooms schema",
		},
		{
			name: "duplicate id",
			datasets: []DatasetStep{
				{ID: "rooms", Kind: "rooms", Generate: 1},
				{ID: "rooms", Kind: "rooms", Generate: 1},
			},
			wantErr: "dataset 1 (rooms)",
		},
		{
			name:     "missing file",
			datasets: []DatasetStep{{ID: "rooms", Kind: "rooms", File: "does/not/exist.json"}},
			wantErr:  "read dataset file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:       tt.name,
				Datasets:   tt.datasets,
				Query:      roomsQuery(map[string]any{}, "rooms_name"),
				Assertions: []Assertion{{Type: AssertRowCount}},
			}
			_, err := Run(scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to add datasets")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scenario := &Scenario{
		Name:       "cancelled",
		Datasets:   []DatasetStep{{ID: "rooms", Kind: "rooms", Generate: 1}},
		Query:      roomsQuery(map[string]any{}, "rooms_name"),
		Assertions: []Assertion{{Type: AssertRowCount, Count: 1}},
	}

	_, err := RunContext(ctx, scenario)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize(t *testing.T) {
	got, err := normalize(map[string]any{
		"a": 1,
		"b": []any{int64(2), 3.5, "x"},
		"c": map[string]any{"d": uint64(4)},
		"e": true,
		"f": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": float64(1),
		"b": []any{float64(2), 3.5, "x"},
		"c": map[string]any{"d": float64(4)},
		"e": true,
		"f": nil,
	}, got)

	_, err = normalize(map[string]any{"bad": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "bad": unsupported type struct {}`)
}
