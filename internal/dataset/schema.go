package dataset

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/roach88/insight/internal/ir"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[ir.Kind]*gojsonschema.Schema
	schemasErr  error
)

// schemaFor returns the compiled JSON Schema for kind.
func schemaFor(kind ir.Kind) (*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas = make(map[ir.Kind]*gojsonschema.Schema, len(ir.Kinds))
		for _, k := range ir.Kinds {
			src, err := schemaFS.ReadFile("schemas/" + string(k) + ".json")
			if err != nil {
				schemasErr = fmt.Errorf("read %s schema: %w", k, err)
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(src))
			if err != nil {
				schemasErr = fmt.Errorf("invalid json schema for %s: %w", k, err)
				return
			}
			schemas[k] = schema
		}
	})
	if schemasErr != nil {
		return nil, schemasErr
	}
	schema, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for kind %q", kind)
	}
	return schema, nil
}

// SchemaSource returns the raw JSON Schema document for kind.
func SchemaSource(kind ir.Kind) ([]byte, error) {
	if _, err := ir.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	return schemaFS.ReadFile("schemas/" + string(kind) + ".json")
}
