package engine

import (
	"slices"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// sortRows sorts rows in place by order. A nil order leaves rows as they
// are. The sort is stable: rows equal on every key keep their input order.
//
// Every row must carry every ORDER key; this is checked before sorting.
func sortRows(rows []ir.Record, order queryir.Order, get lookup) error {
	if order == nil {
		return nil
	}

	keys := order.SortKeys()
	for i, row := range rows {
		for _, key := range keys {
			if _, ok := get(row, key); !ok {
				return contractViolation(key.Name(), "ORDER key not found in row %d", i)
			}
		}
	}

	greater := 1
	if order.Dir() == queryir.Descending {
		greater = -1
	}

	slices.SortStableFunc(rows, func(a, b ir.Record) int {
		for _, key := range keys {
			va, _ := get(a, key)
			vb, _ := get(b, key)
			if c := ir.Compare(va, vb); c != 0 {
				return c * greater
			}
		}
		return 0
	})
	return nil
}
