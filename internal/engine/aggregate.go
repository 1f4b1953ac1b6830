package engine

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// decimalContext is used for SUM and AVG. 34 digits (decimal128) keeps any
// realistic column sum exact.
var decimalContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}()

// aggregateBucket builds the output row of one group: its GROUP values
// under their column names, plus one column per aggregation.
func aggregateBucket(b *bucket, t queryir.Transformation) (ir.Record, error) {
	row := make(ir.Record, len(t.GroupBy)+len(t.Aggregations))
	for i, key := range t.GroupBy {
		row[key.Name()] = b.values[i]
	}

	for _, agg := range t.Aggregations {
		v, err := aggregate(agg.Aggregate, b.records)
		if err != nil {
			return nil, err
		}
		row[agg.Key.Value] = v
	}
	return row, nil
}

// aggregate computes one aggregation over a non-empty group.
func aggregate(a queryir.Aggregate, records []ir.Record) (ir.Value, error) {
	switch agg := a.(type) {
	case queryir.Max:
		return extreme(agg.Key, records, func(candidate, best float64) bool { return candidate > best })
	case queryir.Min:
		return extreme(agg.Key, records, func(candidate, best float64) bool { return candidate < best })
	case queryir.Sum:
		sum, err := decimalSum(agg.Key, records)
		if err != nil {
			return nil, err
		}
		return roundToCents(agg.Key, sum)
	case queryir.Avg:
		sum, err := decimalSum(agg.Key, records)
		if err != nil {
			return nil, err
		}
		var avg apd.Decimal
		if _, err := decimalContext.Quo(&avg, sum, apd.New(int64(len(records)), 0)); err != nil {
			return nil, contractViolation(agg.Key.Name(), "AVG: %v", err)
		}
		return roundToCents(agg.Key, &avg)
	case queryir.Count:
		return count(agg.Key, records)
	default:
		return nil, contractViolation("", "unknown aggregate type: %T", a)
	}
}

// extreme returns the value of key that wins every better() comparison.
func extreme(key queryir.NumberKey, records []ir.Record, better func(candidate, best float64) bool) (ir.Value, error) {
	var best float64
	for i, rec := range records {
		n, err := numberAt(rec, key)
		if err != nil {
			return nil, err
		}
		if i == 0 || better(n, best) {
			best = n
		}
	}
	return ir.Number(best), nil
}

// decimalSum adds key over records without binary floating-point drift.
func decimalSum(key queryir.NumberKey, records []ir.Record) (*apd.Decimal, error) {
	sum := apd.New(0, 0)
	for _, rec := range records {
		n, err := numberAt(rec, key)
		if err != nil {
			return nil, err
		}
		var d apd.Decimal
		if _, err := d.SetFloat64(n); err != nil {
			return nil, contractViolation(key.Name(), "cannot convert %v to decimal: %v", n, err)
		}
		var next apd.Decimal
		if _, err := decimalContext.Add(&next, sum, &d); err != nil {
			return nil, contractViolation(key.Name(), "decimal sum: %v", err)
		}
		sum.Set(&next)
	}
	return sum, nil
}

// roundToCents rounds half up to 2 decimal places.
func roundToCents(key queryir.NumberKey, d *apd.Decimal) (ir.Value, error) {
	var rounded apd.Decimal
	if _, err := decimalContext.Quantize(&rounded, d, -2); err != nil {
		return nil, contractViolation(key.Name(), "rounding: %v", err)
	}
	f, err := rounded.Float64()
	if err != nil {
		return nil, contractViolation(key.Name(), "rounding: %v", err)
	}
	return ir.Number(f), nil
}

// count is the number of distinct values of key. A record without the field
// is a contract violation, not a skipped value.
func count(key queryir.AnyKey, records []ir.Record) (ir.Value, error) {
	seen := make(map[ir.Value]struct{}, len(records))
	for _, rec := range records {
		v, ok := rec[key.FieldName()]
		if !ok || v == nil {
			return nil, contractViolation(key.Name(), "required record field is missing")
		}
		seen[v] = struct{}{}
	}
	return ir.Number(len(seen)), nil
}
