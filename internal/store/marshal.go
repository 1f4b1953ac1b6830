package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/insight/internal/ir"
)

// marshalRecord converts a record to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalRecord(rec ir.Record) (string, error) {
	data, err := ir.MarshalCanonical(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(data), nil
}

// unmarshalRecord parses canonical JSON TEXT back into a record.
// ir.Record.UnmarshalJSON rejects anything that is not a flat object of
// numbers and strings.
func unmarshalRecord(data string) (ir.Record, error) {
	if data == "" || data == "{}" {
		return ir.Record{}, nil
	}
	var rec ir.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
