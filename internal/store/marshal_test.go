package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/ir"
)

func TestMarshalRecord_Canonical(t *testing.T) {
	rec := ir.Record{
		"uuid": ir.String("1"),
		"avg":   ir.Number(84.5),
		"dept": ir.String("cpsc"),
		"year": ir.Number(2015),
	}

	got, err := marshalRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"avg":84.5,"dept":"cpsc","uuid":"1","year":2015}`, got)
}

func TestMarshalRecord_RoundTrip(t *testing.T) {
	rec := ir.Record{
		"name":  ir.String("DMP_110"),
		"seats": ir.Number(120),
		"lat":   ir.Number(49.26125),
	}

	body, err := marshalRecord(rec)
	require.NoError(t, err)

	back, err := unmarshalRecord(body)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestUnmarshalRecord_Empty(t *testing.T) {
	for _, in := range []string{"", "{}"} {
		rec, err := unmarshalRecord(in)
		require.NoError(t, err)
		assert.Empty(t, rec)
	}
}

func TestUnmarshalRecord_RejectsNested(t *testing.T) {
	_, err := unmarshalRecord(`{"a":{"b":1}}`)
	assert.Error(t, err)
}
