// Package store is the SQLite-backed dataset catalog.
//
// A dataset is an id, a kind (sections or rooms) and an ordered list of flat
// records. Records are stored one row each as canonical JSON so that reloading
// a dataset yields the same records in the same order.
//
// # Identity
//
// Dataset ids must be non-empty, must not be whitespace only and must not
// contain an underscore, because queries address fields as <id>_<field>.
// Adding an id twice fails with ErrDuplicate; removing or loading an unknown
// id fails with ErrNotFound.
//
// # Ordering
//
//   - ListDatasets returns datasets in the order they were added (seq ASC)
//   - Records returns records in their original order (idx ASC)
//
// # Caching
//
// Loaded record slices are cached in memory until the dataset is removed.
// Cached slices are shared between callers and must be treated as read only.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Records are deleted with their dataset
package store
