package engine

import (
	"fmt"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// DefaultMaxResults is the default maximum number of result rows (standard
// queries) or groups (aggregate queries).
const DefaultMaxResults = 5000

// Engine evaluates compiled queries against in-memory records.
//
// An Engine holds only configuration; it is safe for concurrent use.
type Engine struct {
	maxResults int // Maximum rows or groups per query (default: 5000)
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxResults sets the maximum number of rows or groups per query.
//
// Default: 5000 (DefaultMaxResults)
// Use WithMaxResults(10) for testing limit enforcement.
func WithMaxResults(maxResults int) EngineOption {
	return func(e *Engine) {
		e.maxResults = maxResults
	}
}

// New creates an Engine.
//
// Options can be passed to configure the engine (e.g., WithMaxResults).
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		maxResults: DefaultMaxResults,
	}

	// Apply options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// MaxResults returns the configured result limit.
func (e *Engine) MaxResults() int {
	return e.maxResults
}

// Evaluate runs a query over records and returns the projected rows in
// order. Each row holds exactly the query's COLUMNS, keyed by column name.
//
// records must be of the query's kind (the caller checks this) and are
// never modified.
func (e *Engine) Evaluate(q queryir.Query, records []ir.Record) ([]ir.Record, error) {
	if err := queryir.Validate(q); err != nil {
		return nil, contractViolation("", "invalid query IR: %v", err)
	}

	switch query := q.(type) {
	case queryir.StandardQuery:
		return e.evaluateStandard(query, records)
	case queryir.AggregateQuery:
		return e.evaluateAggregate(query, records)
	default:
		return nil, contractViolation("", "unknown query type: %T", q)
	}
}

func (e *Engine) evaluateStandard(q queryir.StandardQuery, records []ir.Record) ([]ir.Record, error) {
	limit := NewResultLimit(e.maxResults, false)

	filtered, err := filterWithLimit(q.Filter, records, limit)
	if err != nil {
		return nil, err
	}

	if err := sortRows(filtered, q.Order, fieldLookup); err != nil {
		return nil, err
	}

	return project(filtered, q.Columns, fieldLookup)
}

func (e *Engine) evaluateAggregate(q queryir.AggregateQuery, records []ir.Record) ([]ir.Record, error) {
	filtered, err := filterWithLimit(q.Filter, records, nil)
	if err != nil {
		return nil, err
	}

	limit := NewResultLimit(e.maxResults, true)
	buckets, err := groupWithLimit(filtered, q.Transformation.GroupBy, limit)
	if err != nil {
		return nil, err
	}

	rows := make([]ir.Record, 0, len(buckets))
	for _, b := range buckets {
		row, err := aggregateBucket(b, q.Transformation)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if err := sortRows(rows, q.Order, columnLookup); err != nil {
		return nil, err
	}

	return project(rows, q.Columns, columnLookup)
}

// lookup reads the value a key refers to from a row.
type lookup func(row ir.Record, key queryir.AnyKey) (ir.Value, bool)

// fieldLookup reads raw records, keyed by bare field name.
func fieldLookup(row ir.Record, key queryir.AnyKey) (ir.Value, bool) {
	v, ok := row[key.FieldName()]
	return v, ok
}

// columnLookup reads group rows, keyed by column name.
func columnLookup(row ir.Record, key queryir.AnyKey) (ir.Value, bool) {
	v, ok := row[key.Name()]
	return v, ok
}

// project builds one output row per input row holding exactly columns.
func project(rows []ir.Record, columns []queryir.AnyKey, get lookup) ([]ir.Record, error) {
	out := make([]ir.Record, len(rows))
	for i, row := range rows {
		projected := make(ir.Record, len(columns))
		for _, col := range columns {
			v, ok := get(row, col)
			if !ok {
				return nil, contractViolation(col.Name(), "COLUMNS key not found in row %d", i)
			}
			projected[col.Name()] = v
		}
		out[i] = projected
	}
	return out, nil
}

// numberAt reads a numeric field from a record.
func numberAt(row ir.Record, key queryir.AnyKey) (float64, error) {
	v, ok := row[key.FieldName()]
	if !ok {
		return 0, contractViolation(key.Name(), "required record field is missing")
	}
	n, ok := v.(ir.Number)
	if !ok {
		return 0, contractViolation(key.Name(), "record field is not a number: %s", describe(v))
	}
	return float64(n), nil
}

// stringAt reads a string field from a record.
func stringAt(row ir.Record, key queryir.AnyKey) (string, error) {
	v, ok := row[key.FieldName()]
	if !ok {
		return "", contractViolation(key.Name(), "required record field is missing")
	}
	s, ok := v.(ir.String)
	if !ok {
		return "", contractViolation(key.Name(), "record field is not a string: %s", describe(v))
	}
	return string(s), nil
}

func describe(v ir.Value) string {
	return fmt.Sprintf("%T(%v)", v, ir.Interface(v))
}
