package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

func TestAggregate_CountDistinct(t *testing.T) {
	instructor := queryir.StringKey{Field: "instructor", Value: "sections_instructor"}
	records := []ir.Record{
		{"instructor": ir.String("A")},
		{"instructor": ir.String("A")},
		{"instructor": ir.String("B")},
	}

	v, err := aggregate(queryir.Count{Key: instructor}, records)
	require.NoError(t, err)
	assert.Equal(t, ir.Number(2), v)
}

func TestAggregate_CountNumbers(t *testing.T) {
	year := queryir.NumberKey{Field: "year", Value: "sections_year"}
	records := []ir.Record{
		{"year": ir.Number(2015)},
		{"year": ir.Number(2016)},
		{"year": ir.Number(2015)},
	}

	v, err := aggregate(queryir.Count{Key: year}, records)
	require.NoError(t, err)
	assert.Equal(t, ir.Number(2), v)
}

func TestAggregate_MaxMinNegative(t *testing.T) {
	lon := queryir.NumberKey{Field: "lon", Value: "rooms_lon"}
	records := []ir.Record{
		{"lon": ir.Number(-123.25)},
		{"lon": ir.Number(-123.24)},
		{"lon": ir.Number(-123.26)},
	}

	v, err := aggregate(queryir.Max{Key: lon}, records)
	require.NoError(t, err)
	assert.Equal(t, ir.Number(-123.24), v)

	v, err = aggregate(queryir.Min{Key: lon}, records)
	require.NoError(t, err)
	assert.Equal(t, ir.Number(-123.26), v)
}

func TestAggregate_NumericOnString(t *testing.T) {
	avg := queryir.NumberKey{Field: "avg", Value: "sections_avg"}
	records := []ir.Record{{"avg": ir.String("90")}}

	for _, agg := range []queryir.Aggregate{
		queryir.Max{Key: avg}, queryir.Min{Key: avg}, queryir.Sum{Key: avg}, queryir.Avg{Key: avg},
	} {
		_, err := aggregate(agg, records)
		assert.True(t, IsContractViolation(err), agg.Token())
	}
}

func TestGroupWithLimit_TypedKeys(t *testing.T) {
	id := queryir.StringKey{Field: "id", Value: "sections_id"}
	records := []ir.Record{
		{"id": ir.String("310")},
		{"id": ir.String("310")},
		{"id": ir.String("110")},
	}

	buckets, err := groupWithLimit(records, []queryir.AnyKey{id}, NewResultLimit(10, true))
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, []ir.Value{ir.String("310")}, buckets[0].values)
	assert.Len(t, buckets[0].records, 2)
	assert.Equal(t, []ir.Value{ir.String("110")}, buckets[1].values)
}

func TestGroupWithLimit_StopsAtNewBucket(t *testing.T) {
	dept := queryir.StringKey{Field: "dept", Value: "sections_dept"}
	records := []ir.Record{
		{"dept": ir.String("a")},
		{"dept": ir.String("a")},
		{"dept": ir.String("b")},
		{"dept": ir.String("a")},
	}

	_, err := groupWithLimit(records, []queryir.AnyKey{dept}, NewResultLimit(2, true))
	require.NoError(t, err, "two groups fit a limit of two")

	_, err = groupWithLimit(records, []queryir.AnyKey{dept}, NewResultLimit(1, true))
	assert.True(t, IsResultTooLarge(err))
}

func TestGroupWithLimit_MissingKey(t *testing.T) {
	dept := queryir.StringKey{Field: "dept", Value: "sections_dept"}
	_, err := groupWithLimit([]ir.Record{{"avg": ir.Number(1)}}, []queryir.AnyKey{dept}, NewResultLimit(1, true))
	assert.True(t, IsContractViolation(err))
}

func TestGroupWithLimit_DistinctStringsStayDistinct(t *testing.T) {
	instructor := queryir.StringKey{Field: "instructor", Value: "sections_instructor"}

	tests := []struct {
		name   string
		first  string
		second string
	}{
		{"precomposed vs combining accent", "caf\u00e9", "cafe\u0301"},
		{"invalid utf-8 bytes", "a\xff", "a\xfe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []ir.Record{
				{"instructor": ir.String(tt.first)},
				{"instructor": ir.String(tt.second)},
			}

			buckets, err := groupWithLimit(records, []queryir.AnyKey{instructor}, NewResultLimit(10, true))
			require.NoError(t, err)
			require.Len(t, buckets, 2)
			assert.Equal(t, []ir.Value{ir.String(tt.first)}, buckets[0].values)
			assert.Equal(t, []ir.Value{ir.String(tt.second)}, buckets[1].values)

			for _, b := range buckets {
				n, err := aggregate(queryir.Count{Key: instructor}, b.records)
				require.NoError(t, err)
				assert.Equal(t, ir.Number(1), n)
			}
		})
	}
}

func TestBucketKey(t *testing.T) {
	key := func(values ...ir.Value) string {
		k, err := bucketKey(values)
		require.NoError(t, err)
		return k
	}

	assert.NotEqual(t, key(ir.Number(310)), key(ir.String("310")))
	assert.NotEqual(t, key(ir.String("a,b")), key(ir.String("a"), ir.String("b")))
	assert.Equal(t, key(ir.Number(0)), key(ir.Number(math.Copysign(0, -1))))

	_, err := bucketKey([]ir.Value{nil})
	assert.True(t, IsContractViolation(err))
}
