package insight

import (
	"context"
	"fmt"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// RecordProvider resolves a dataset id to its records. Implementations must
// confirm the stored kind matches kind before returning records.
// *store.Store is the production implementation.
type RecordProvider interface {
	Records(ctx context.Context, id string, kind ir.Kind) ([]ir.Record, error)
}

// RecordProviderFunc adapts a function to RecordProvider.
type RecordProviderFunc func(ctx context.Context, id string, kind ir.Kind) ([]ir.Record, error)

// Records calls f.
func (f RecordProviderFunc) Records(ctx context.Context, id string, kind ir.Kind) ([]ir.Record, error) {
	return f(ctx, id, kind)
}

// Evaluate compiles raw, loads the dataset it names from provider and
// evaluates it. raw is any value decoded from JSON (or an equivalent Go
// value); it is never mutated.
func Evaluate(ctx context.Context, raw any, provider RecordProvider, opts ...engine.EngineOption) ([]ir.Record, error) {
	_, rows, err := evaluate(ctx, raw, provider, engine.New(opts...))
	return rows, err
}

// evaluate also returns the compiled query (nil if compilation failed) so
// callers can report which dataset was touched.
func evaluate(ctx context.Context, raw any, provider RecordProvider, eng *engine.Engine) (queryir.Query, []ir.Record, error) {
	q, err := compiler.Compile(raw)
	if err != nil {
		return nil, nil, err
	}

	body := q.QueryBody()
	records, err := provider.Records(ctx, body.Dataset, body.Kind)
	if err != nil {
		return q, nil, fmt.Errorf("load dataset %q: %w", body.Dataset, err)
	}

	rows, err := eng.Evaluate(q, records)
	if err != nil {
		return q, nil, err
	}
	return q, rows, nil
}
