// Package dataset decodes record files into typed records.
//
// A record file is a JSON array of flat objects, or a CUE file whose value is
// such a list (either at the top level or under a records field). Every file
// is validated against the JSON Schema of its kind before conversion, so a
// decoded dataset always has every field of its schema with the right type.
// Strings are NFC normalized on the way in.
package dataset
