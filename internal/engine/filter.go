package engine

import (
	"strings"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// filterWithLimit returns the records matching f, in input order.
//
// With a non-nil limit, every match is counted and filtering stops with
// ResultTooLargeError as soon as the limit is exceeded.
func filterWithLimit(f queryir.Filter, records []ir.Record, limit *ResultLimit) ([]ir.Record, error) {
	var out []ir.Record
	for _, rec := range records {
		ok, err := matches(f, rec)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if limit != nil {
			if err := limit.Check(); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// matches evaluates a filter tree against one record.
func matches(f queryir.Filter, rec ir.Record) (bool, error) {
	switch filter := f.(type) {
	case queryir.Greater:
		n, err := numberAt(rec, filter.Key)
		return n > filter.Value, err
	case queryir.Lesser:
		n, err := numberAt(rec, filter.Key)
		return n < filter.Value, err
	case queryir.Equal:
		n, err := numberAt(rec, filter.Key)
		return n == filter.Value, err
	case queryir.Like:
		s, err := stringAt(rec, filter.Key)
		return matchPattern(filter.Value, s), err
	case queryir.Not:
		ok, err := matches(filter.Filter, rec)
		return !ok, err
	case queryir.And:
		for _, sub := range filter.Filters {
			ok, err := matches(sub, rec)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case queryir.Or:
		for _, sub := range filter.Filters {
			ok, err := matches(sub, rec)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case queryir.None:
		return true, nil
	default:
		return false, contractViolation("", "unknown filter type: %T", f)
	}
}

// matchPattern applies an IS pattern: a leading '*' matches any prefix and
// a trailing '*' matches any suffix.
func matchPattern(pattern, s string) bool {
	start := strings.HasPrefix(pattern, "*")
	end := strings.HasSuffix(pattern, "*")

	switch {
	case start && end:
		if len(pattern) < 2 {
			// "*" alone
			return true
		}
		return strings.Contains(s, pattern[1:len(pattern)-1])
	case start:
		return strings.HasSuffix(s, pattern[1:])
	case end:
		return strings.HasPrefix(s, pattern[:len(pattern)-1])
	default:
		return s == pattern
	}
}
