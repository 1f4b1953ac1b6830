package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/insight/internal/ir"
)

// InvalidError reports a record file that does not match its kind's schema.
type InvalidError struct {
	Kind     ir.Kind
	Problems []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("dataset invalid against %s schema: %s", e.Kind, strings.Join(e.Problems, "; "))
}

// Decode validates a JSON array of records against the schema of kind and
// converts it into records.
func Decode(kind ir.Kind, data []byte) ([]ir.Record, error) {
	schema, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &InvalidError{Kind: kind, Problems: problems}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	records := make([]ir.Record, len(raw))
	for i, obj := range raw {
		rec, err := toRecord(obj)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records[i] = rec
	}
	return records, nil
}

// FromCUE converts a CUE value into records. The value must be a list of
// records or a struct with a records field holding one.
func FromCUE(kind ir.Kind, v cue.Value) ([]ir.Record, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}
	if v.IncompleteKind() == cue.StructKind {
		list := v.LookupPath(cue.ParsePath("records"))
		if !list.Exists() {
			return nil, fmt.Errorf("CUE value has no records field")
		}
		v = list
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("records must be concrete: %w", err)
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export records: %w", err)
	}
	return Decode(kind, data)
}

// LoadFile reads a record file. Files ending in .cue are evaluated as CUE,
// everything else is read as JSON.
func LoadFile(path string, kind ir.Kind) ([]ir.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	if filepath.Ext(path) != ".cue" {
		return Decode(kind, data)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return FromCUE(kind, v)
}

func toRecord(obj map[string]any) (ir.Record, error) {
	rec := make(ir.Record, len(obj))
	for field, raw := range obj {
		if s, ok := raw.(string); ok {
			raw = norm.NFC.String(s)
		}
		val, err := ir.ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		rec[field] = val
	}
	return rec, nil
}
