package engine

import (
	"errors"
	"fmt"
)

// ResultLimit counts result rows (or groups) as they are produced and
// enforces a maximum.
//
// Each evaluation has its own ResultLimit instance. Check is called once per
// record that passes the filter (standard path) or once per new bucket
// (aggregate path), so evaluation aborts the moment the limit is crossed.
type ResultLimit struct {
	max     int  // Maximum allowed rows or groups
	current int  // Current count
	grouped bool // Counting groups rather than records
}

// NewResultLimit creates a new limit. grouped selects which condition is
// reported when the limit is exceeded.
//
// Typical default: 5000 (configurable via engine.WithMaxResults())
func NewResultLimit(max int, grouped bool) *ResultLimit {
	return &ResultLimit{
		max:     max,
		grouped: grouped,
	}
}

// Check increments the counter and validates against the limit.
//
// Returns ResultTooLargeError once the count exceeds the maximum.
func (l *ResultLimit) Check() error {
	l.current++
	if l.current > l.max {
		return &ResultTooLargeError{
			Limit:   l.max,
			Count:   l.current,
			Grouped: l.grouped,
		}
	}
	return nil
}

// ResultTooLargeError is returned when a query would produce more rows (or
// groups) than the limit allows.
//
// Unlike a validation error the query itself is well formed; it matches too
// much data. Callers report it as "query too broad".
type ResultTooLargeError struct {
	Limit   int  // Maximum allowed rows or groups
	Count   int  // Count reached when evaluation stopped (Limit + 1)
	Grouped bool // True when the limit applied to groups
}

// Error implements the error interface.
func (e *ResultTooLargeError) Error() string {
	if e.Grouped {
		return fmt.Sprintf("Too many groups in aggregation query result (limit is %d).", e.Limit)
	}
	return fmt.Sprintf("Too many records in query result (limit is %d).", e.Limit)
}

// IsResultTooLarge returns true if the error is a ResultTooLargeError.
// Uses errors.As to handle wrapped errors.
func IsResultTooLarge(err error) bool {
	var re *ResultTooLargeError
	return errors.As(err, &re)
}
