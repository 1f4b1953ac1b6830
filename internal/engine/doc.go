// Package engine implements the insight query interpreter.
//
// The engine consumes a compiled Query IR and a read-only slice of records
// of the matching kind, and produces the ordered, projected result rows.
//
// ARCHITECTURE:
//
// Standard path (no TRANSFORMATIONS):
//  1. Filter every record through the compiled filter tree
//  2. Abort as soon as more than the result limit passes the filter
//  3. Sort the survivors by the compiled order (stable)
//  4. Project each row down to exactly the requested COLUMNS
//
// Aggregate path (TRANSFORMATIONS present):
//  1. Filter every record (no limit on raw rows)
//  2. Bucket records by the tuple of their GROUP values, in first-seen order
//  3. Abort as soon as more than the result limit of buckets exist
//  4. Compute every APPLY aggregation per bucket
//  5. Sort the group rows, then project to COLUMNS
//
// The limit is enforced incrementally, never after materializing the full
// result, which bounds peak memory on pathological inputs.
//
// ERRORS:
//
// Exceeding the limit returns *ResultTooLargeError. Anything the compiler
// should have prevented (a missing ORDER or COLUMNS key, a string fed to a
// numeric comparison or aggregate, a missing value fed to COUNT) returns
// *RuntimeError with code CONTRACT_VIOLATION. Nothing panics on bad input.
//
// CONCURRENCY:
//
// Evaluate never mutates its inputs and keeps no state between calls, so
// any number of queries may run concurrently over the same records.
package engine
