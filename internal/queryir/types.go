package queryir

import "github.com/roach88/insight/internal/ir"

// AnyKey is a typed reference to a record field or an aggregation output.
//
// This is a sealed interface - only NumberKey and StringKey implement it.
type AnyKey interface {
	keyNode() // Marker method - seals interface to this package

	// FieldName is the bare field name ("avg"), or the aggregation name.
	FieldName() string
	// Name is the column name used in queries and result rows
	// ("sections_avg", or the bare aggregation name).
	Name() string
	// Type reports whether the key references a numeric or a string field.
	Type() ir.FieldType
}

// NumberKey references a numeric field or an aggregation output.
type NumberKey struct {
	Field string
	Value string
}

func (NumberKey) keyNode()            {}
func (k NumberKey) FieldName() string { return k.Field }
func (k NumberKey) Name() string      { return k.Value }
func (NumberKey) Type() ir.FieldType  { return ir.FieldNumber }

// StringKey references a string field.
type StringKey struct {
	Field string
	Value string
}

func (StringKey) keyNode()            {}
func (k StringKey) FieldName() string { return k.Field }
func (k StringKey) Name() string      { return k.Value }
func (StringKey) Type() ir.FieldType  { return ir.FieldString }

// Filter is a node of the WHERE predicate tree.
//
// This is a sealed interface - only types in this package implement it.
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// Greater matches records whose Key value is strictly greater than Value.
type Greater struct {
	Key   NumberKey
	Value float64
}

func (Greater) filterNode() {}

// Lesser matches records whose Key value is strictly less than Value.
type Lesser struct {
	Key   NumberKey
	Value float64
}

func (Lesser) filterNode() {}

// Equal matches records whose Key value equals Value.
type Equal struct {
	Key   NumberKey
	Value float64
}

func (Equal) filterNode() {}

// Like matches string fields against a pattern.
//
// Value may carry a '*' wildcard as its first and/or last character only:
//
//	"*CS*"  contains "CS"
//	"CS*"   starts with "CS"
//	"*CS"   ends with "CS"
//	"CS"    equals "CS"
type Like struct {
	Key   StringKey
	Value string
}

func (Like) filterNode() {}

// Not negates a filter.
type Not struct {
	Filter Filter
}

func (Not) filterNode() {}

// And matches when every filter matches. Filters is never empty.
type And struct {
	Filters []Filter
}

func (And) filterNode() {}

// Or matches when any filter matches. Filters is never empty.
type Or struct {
	Filters []Filter
}

func (Or) filterNode() {}

// None matches every record. It is the filter of an empty WHERE clause.
type None struct{}

func (None) filterNode() {}

// Aggregate is one APPLY operation over the records of a group.
//
// This is a sealed interface - only types in this package implement it.
type Aggregate interface {
	aggregateNode() // Marker method - seals interface to this package

	// Operand is the key the aggregate reads from each record.
	Operand() AnyKey
	// Token is the operator name used in raw queries ("MAX", "COUNT", ...).
	Token() string
}

// Max is the largest value of a numeric field.
type Max struct{ Key NumberKey }

// Min is the smallest value of a numeric field.
type Min struct{ Key NumberKey }

// Avg is the mean of a numeric field, rounded to 2 decimals.
type Avg struct{ Key NumberKey }

// Sum is the total of a numeric field, rounded to 2 decimals.
type Sum struct{ Key NumberKey }

// Count is the number of distinct values of any field.
type Count struct{ Key AnyKey }

func (Max) aggregateNode()   {}
func (Min) aggregateNode()   {}
func (Avg) aggregateNode()   {}
func (Sum) aggregateNode()   {}
func (Count) aggregateNode() {}

func (a Max) Operand() AnyKey   { return a.Key }
func (a Min) Operand() AnyKey   { return a.Key }
func (a Avg) Operand() AnyKey   { return a.Key }
func (a Sum) Operand() AnyKey   { return a.Key }
func (a Count) Operand() AnyKey { return a.Key }

func (Max) Token() string   { return "MAX" }
func (Min) Token() string   { return "MIN" }
func (Avg) Token() string   { return "AVG" }
func (Sum) Token() string   { return "SUM" }
func (Count) Token() string { return "COUNT" }

// Aggregation binds an aggregate to its output column.
// Key is always synthetic: Field and Value are both the aggregation name.
type Aggregation struct {
	Key       NumberKey
	Aggregate Aggregate
}

// Transformation groups filtered records and computes aggregations per group.
type Transformation struct {
	GroupBy      []AnyKey // never empty
	Aggregations []Aggregation
}

// Direction is the sort direction of a Complex order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the raw query token for the direction.
func (d Direction) String() string {
	if d == Descending {
		return "DOWN"
	}
	return "UP"
}

// Order describes how result rows are sorted.
//
// This is a sealed interface - only Simple and Complex implement it.
type Order interface {
	orderNode() // Marker method - seals interface to this package

	// SortKeys lists keys in priority order.
	SortKeys() []AnyKey
	// Dir is the direction shared by all sort keys.
	Dir() Direction
}

// Simple sorts ascending on a single key.
type Simple struct {
	Key AnyKey
}

func (Simple) orderNode()           {}
func (o Simple) SortKeys() []AnyKey { return []AnyKey{o.Key} }
func (Simple) Dir() Direction       { return Ascending }

// Complex sorts lexicographically over Keys, all in one direction.
// Ties on every key keep their input order.
type Complex struct {
	Direction Direction
	Keys      []AnyKey // never empty
}

func (Complex) orderNode()           {}
func (o Complex) SortKeys() []AnyKey { return o.Keys }
func (o Complex) Dir() Direction     { return o.Direction }

// Body holds the parts every query has.
type Body struct {
	Dataset string  // dataset id shared by every key
	Kind    ir.Kind // record kind shared by every key
	Filter  Filter  // None for an empty WHERE
	Columns []AnyKey
	Order   Order // nil when OPTIONS has no ORDER
}

// Query is a compiled query.
//
// This is a sealed interface - only StandardQuery and AggregateQuery
// implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package

	// QueryBody returns the parts shared by both query forms.
	QueryBody() Body
}

// StandardQuery filters, sorts and projects records.
type StandardQuery struct {
	Body
}

func (StandardQuery) queryNode()        {}
func (q StandardQuery) QueryBody() Body { return q.Body }

// AggregateQuery filters records, groups them and projects one row per group.
type AggregateQuery struct {
	Body
	Transformation Transformation
}

func (AggregateQuery) queryNode()        {}
func (q AggregateQuery) QueryBody() Body { return q.Body }
