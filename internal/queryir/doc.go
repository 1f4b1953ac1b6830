// Package queryir provides the typed intermediate representation (IR) of an
// insight query.
//
// The IR is the boundary between the query compiler and the interpreter:
//
//	[raw JSON query] → compiler → [Query IR] → engine → []ir.Record
//
// The compiler never touches data and the engine never re-validates the
// grammar. Everything the engine relies on (typed keys, one dataset, unique
// aggregation names, well-formed wildcards) is established while the IR is
// built.
//
// SEALED INTERFACES:
//
// AnyKey, Filter, Aggregate, Order and Query are sealed interfaces using the
// marker method pattern. Only types in this package implement them, so type
// switches over them can be exhaustive:
//
//	switch f := filter.(type) {
//	case Greater:
//	case Lesser:
//	case Equal:
//	case Like:
//	case Not:
//	case And:
//	case Or:
//	case None:
//	}
//
// Adding a new variant is a compile-time-checked change: every switch that
// must handle it carries a default branch reporting the unknown type.
//
// KEYS:
//
// A key carries the bare schema field, a type tag derived from schema
// membership, and the value string that names the column in input queries
// and result rows. For record fields the value is "<datasetId>_<field>";
// for aggregation outputs the value is the bare aggregation name and the
// key is always a NumberKey.
//
// ROUND TRIP:
//
// Encode turns a Query back into the raw query shape. Compiling the encoded
// form yields an equal Query.
package queryir
