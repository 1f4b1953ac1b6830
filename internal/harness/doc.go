// Package harness runs query conformance scenarios.
//
// A scenario loads one or more datasets into a fresh in-memory catalog, runs
// a single query through the insight facade and checks the outcome with a
// list of assertions.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: rooms_big_rooms
//	description: "Rooms with more than 100 seats, largest first"
//	max_results: 5000          # optional, defaults to the engine limit
//	datasets:
//	  - id: rooms
//	    kind: rooms
//	    file: ../data/rooms.json  # JSON or CUE, relative to the scenario
//	  - id: courses
//	    kind: sections
//	    generate: 6000            # synthetic records
//	  - id: small
//	    kind: rooms
//	    records:                  # inline records
//	      - { name: DMP_110, seats: 120, ... }
//	query:
//	  WHERE: { GT: { rooms_seats: 100 } }
//	  OPTIONS: { COLUMNS: [rooms_name, rooms_seats], ORDER: rooms_seats }
//	assertions:
//	  - type: row_count
//	    count: 2
//	  - type: rows_equal
//	    rows: [ { rooms_name: DMP_110, rooms_seats: 120 } ]
//
// # Assertion Types
//
//   - row_count: the query returned exactly count rows
//   - rows_equal: the rows equal rows, in order unless unordered is set
//   - rows_contain: every row in rows is among the results
//   - columns: every result row has exactly the keys listed
//   - ordered_by: results are sorted on keys in dir (UP or DOWN)
//   - error: the query failed with class, and code or message if given
//
// A query that fails without an error assertion fails the scenario.
//
// # Golden Snapshots
//
// RunWithGolden stores the canonical JSON outcome of a scenario under
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
