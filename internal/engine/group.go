package engine

import (
	"strconv"
	"strings"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// bucket is the set of records sharing one tuple of GROUP values.
type bucket struct {
	values  []ir.Value // GROUP values, in GROUP key order
	records []ir.Record
}

// groupWithLimit buckets records by their GROUP values.
//
// Buckets are keyed by bucketKey and returned in first-seen order. Evaluation
// stops with ResultTooLargeError as soon as a new bucket exceeds the limit.
func groupWithLimit(records []ir.Record, groupBy []queryir.AnyKey, limit *ResultLimit) ([]*bucket, error) {
	var buckets []*bucket
	index := make(map[string]*bucket)

	for _, rec := range records {
		values := make([]ir.Value, len(groupBy))
		for i, key := range groupBy {
			v, ok := rec[key.FieldName()]
			if !ok {
				return nil, contractViolation(key.Name(), "GROUP key not found in record")
			}
			values[i] = v
		}

		id, err := bucketKey(values)
		if err != nil {
			return nil, err
		}

		b, ok := index[id]
		if !ok {
			if err := limit.Check(); err != nil {
				return nil, err
			}
			b = &bucket{values: values}
			index[id] = b
			buckets = append(buckets, b)
		}
		b.records = append(b.records, rec)
	}

	return buckets, nil
}

// bucketKey encodes a GROUP value tuple losslessly. Each value carries a type
// tag, so 310 and "310" never collide. Strings are quoted byte for byte with
// no normalisation, so distinct spellings and invalid UTF-8 stay distinct.
func bucketKey(values []ir.Value) (string, error) {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		switch val := v.(type) {
		case ir.Number:
			f := float64(val)
			if f == 0 {
				f = 0 // -0 and 0 share a bucket
			}
			b.WriteByte('n')
			b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		case ir.String:
			b.WriteByte('s')
			b.WriteString(strconv.Quote(string(val)))
		default:
			return "", contractViolation("", "cannot group on %s", describe(v))
		}
	}
	return b.String(), nil
}
