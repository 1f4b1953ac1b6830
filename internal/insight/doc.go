// Package insight binds the query compiler, the engine and the dataset
// catalog.
//
// Evaluate is the single boundary function: it compiles an arbitrarily
// shaped raw query, asks a RecordProvider for the records of the dataset the
// query names, and runs the engine over them. Facade wraps Evaluate with the
// SQLite catalog, per-query ids, structured logging and metrics; the CLI and
// the HTTP server both go through it.
//
// Errors keep their concrete types (*compiler.ValidationError,
// *engine.ResultTooLargeError, store sentinels). Classify maps any of them to
// the coarse Class that transports report.
package insight
