package ir

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidKind is returned by ParseKind for names other than sections and rooms.
var ErrInvalidKind = errors.New("invalid dataset kind")

// Kind identifies which of the two fixed record schemas a dataset holds.
type Kind string

const (
	KindSections Kind = "sections"
	KindRooms    Kind = "rooms"
)

// Kinds lists the supported record kinds in a stable order.
var Kinds = []Kind{KindSections, KindRooms}

// ParseKind converts a raw kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSections, KindRooms:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w %q: must be %q or %q", ErrInvalidKind, s, KindSections, KindRooms)
	}
}

// FieldType is the primitive type stored in a record field.
type FieldType string

const (
	FieldNumber FieldType = "number"
	FieldString FieldType = "string"
)

// Schema describes the fields of one record kind.
type Schema struct {
	Kind    Kind
	Numbers []string
	Strings []string
}

// SectionsSchema is the schema of course section records.
var SectionsSchema = Schema{
	Kind:    KindSections,
	Numbers: []string{"year", "avg", "pass", "fail", "audit"},
	Strings: []string{"dept", "id", "instructor", "title", "uuid"},
}

// RoomsSchema is the schema of room records.
var RoomsSchema = Schema{
	Kind:    KindRooms,
	Numbers: []string{"lat", "lon", "seats"},
	Strings: []string{"fullname", "shortname", "number", "name", "address", "type", "furniture", "href"},
}

// SchemaFor returns the schema for a kind.
func SchemaFor(kind Kind) (Schema, bool) {
	switch kind {
	case KindSections:
		return SectionsSchema, true
	case KindRooms:
		return RoomsSchema, true
	default:
		return Schema{}, false
	}
}

// FieldType reports the type of a field in this schema.
func (s Schema) FieldType(field string) (FieldType, bool) {
	if slices.Contains(s.Numbers, field) {
		return FieldNumber, true
	}
	if slices.Contains(s.Strings, field) {
		return FieldString, true
	}
	return "", false
}

// Fields returns every field name of the schema, sorted.
func (s Schema) Fields() []string {
	fields := make([]string, 0, len(s.Numbers)+len(s.Strings))
	fields = append(fields, s.Numbers...)
	fields = append(fields, s.Strings...)
	slices.Sort(fields)
	return fields
}

// LookupField finds which schema declares field and the field's type.
// Returns false if neither schema declares it.
func LookupField(field string) (Kind, FieldType, bool) {
	for _, kind := range Kinds {
		schema, _ := SchemaFor(kind)
		if ft, ok := schema.FieldType(field); ok {
			return kind, ft, true
		}
	}
	return "", "", false
}
