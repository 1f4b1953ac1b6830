// Package ir provides the record model shared by the query compiler, the
// query interpreter and the dataset catalog.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Records are flat: every field holds a Number or a String
//   - Exactly two record kinds exist (sections, rooms) and their schemas are fixed
//   - Field names are disjoint across the two schemas, so a field name alone
//     identifies its kind and type
//   - MarshalCanonical is the only serialization used for group bucket keys and
//     content hashes
package ir
