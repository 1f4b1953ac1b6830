package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetHashDeterminism(t *testing.T) {
	records := []Record{
		{"dept": String("cpsc"), "avg": Number(95)},
		{"dept": String("math"), "avg": Number(72.5)},
	}

	h1, err := DatasetHash(KindSections, records)
	require.NoError(t, err)
	h2, err := DatasetHash(KindSections, records)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "DatasetHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestDatasetHashChangesWithInput(t *testing.T) {
	a := []Record{{"dept": String("cpsc")}}
	b := []Record{{"dept": String("math")}}

	ha, err := DatasetHash(KindSections, a)
	require.NoError(t, err)
	hb, err := DatasetHash(KindSections, b)
	require.NoError(t, err)
	hk, err := DatasetHash(KindRooms, a)
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb, "different records should produce different hashes")
	assert.NotEqual(t, ha, hk, "different kinds should produce different hashes")
}

func TestDatasetHashOrderSensitive(t *testing.T) {
	r1 := Record{"dept": String("cpsc")}
	r2 := Record{"dept": String("math")}

	h1, err := DatasetHash(KindSections, []Record{r1, r2})
	require.NoError(t, err)
	h2, err := DatasetHash(KindSections, []Record{r2, r1})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestQueryHashIgnoresKeyOrder(t *testing.T) {
	q1 := map[string]any{"WHERE": map[string]any{}, "OPTIONS": map[string]any{"COLUMNS": []any{"sections_avg"}}}
	q2 := map[string]any{"OPTIONS": map[string]any{"COLUMNS": []any{"sections_avg"}}, "WHERE": map[string]any{}}

	h1, err := QueryHash(q1)
	require.NoError(t, err)
	h2, err := QueryHash(q2)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
