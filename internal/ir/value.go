package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface representing a primitive record field value.
// Only Number and String implement it.
type Value interface {
	recordValue() // Sealed - only these types implement it
}

// Number is a numeric field value.
type Number float64

func (Number) recordValue() {}

// String is a string field value.
type String string

func (String) recordValue() {}

// Record is one flat entity (a section or a room, or a projected result row).
// Keys are field names; for result rows they are fully-qualified column names.
type Record map[string]Value

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON). This is also the ordering
// used when comparing String values for ORDER.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Compare orders two values. Numbers compare numerically and strings by
// UTF-16 code units. A Number always sorts before a String; mixed
// comparisons only happen when a caller broke the schema.
func Compare(a, b Value) int {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return -1
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case String:
		bv, ok := b.(String)
		if !ok {
			return 1
		}
		return compareUTF16(string(av), string(bv))
	default:
		return 0
	}
}

// Interface converts a Value into a plain Go value (float64 or string).
func Interface(v Value) any {
	switch val := v.(type) {
	case Number:
		return float64(val)
	case String:
		return string(val)
	default:
		return nil
	}
}

// ValueOf converts a decoded JSON or YAML scalar into a Value.
// Accepts every Go numeric type the standard decoders produce.
func ValueOf(v any) (Value, error) {
	if s, ok := v.(string); ok {
		return String(s), nil
	}
	if n, ok := AsNumber(v); ok {
		return Number(n), nil
	}
	return nil, fmt.Errorf("unsupported field value type %T: only numbers and strings are allowed", v)
}

// AsNumber reports whether v is a finite number and returns it as float64.
// Booleans and strings are never numbers.
func AsNumber(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case Number:
		f = float64(val)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// MarshalJSON implements json.Marshaler for Record with sorted keys (RFC 8785 ordering).
// NOTE: This is NOT canonical marshaling - strings are not NFC normalized.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range r.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(r[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler for Record.
// Nested objects, arrays, booleans and null are rejected: records are flat.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	rec := make(Record, len(raw))
	for k, v := range raw {
		val, err := ValueOf(v)
		if err != nil {
			return fmt.Errorf("record field %q: %w", k, err)
		}
		rec[k] = val
	}
	*r = rec
	return nil
}

// MarshalValue marshals a Value to JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Number:
		return json.Marshal(float64(val))
	case String:
		return json.Marshal(string(val))
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// String renders a record as canonical-order key=value pairs, for logs and
// test failure messages.
func (r Record) String() string {
	parts := make([]string, 0, len(r))
	for _, k := range r.SortedKeys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, Interface(r[k])))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
