package compiler

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/insight/internal/queryir"
)

// Compile validates a raw query and builds its IR.
//
// raw is the value decoded from a JSON request body (objects as
// map[string]any, arrays as []any). Clauses are parsed in dependency order:
// WHERE, then TRANSFORMATIONS (declaring aggregation names), then OPTIONS.
// The first violation found is returned as a *ValidationError.
func Compile(raw any) (queryir.Query, error) {
	ctx := NewContext()

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ctx.Failure(ErrQueryShape, "QUERY must be an object.")
	}
	for _, k := range sortedKeys(obj) {
		switch k {
		case "WHERE", "OPTIONS", "TRANSFORMATIONS":
		default:
			return nil, ctx.Failure(ErrQueryShape, "QUERY can only have WHERE, OPTIONS and TRANSFORMATIONS clauses (%s is invalid).", k)
		}
	}
	if _, ok := obj["WHERE"]; !ok {
		return nil, ctx.Failure(ErrQueryShape, "QUERY must have a WHERE clause.")
	}
	if _, ok := obj["OPTIONS"]; !ok {
		return nil, ctx.Failure(ErrQueryShape, "QUERY must have an OPTIONS clause.")
	}

	filter, err := ParseWhere(ctx.At("WHERE"), obj["WHERE"])
	if err != nil {
		return nil, err
	}

	var transformation *queryir.Transformation
	if rawT, ok := obj["TRANSFORMATIONS"]; ok {
		t, err := ParseTransformations(ctx.At("TRANSFORMATIONS"), rawT)
		if err != nil {
			return nil, err
		}
		transformation = &t
	}

	optionsCtx := ctx.At("OPTIONS")
	opts, err := ParseOptions(optionsCtx, obj["OPTIONS"])
	if err != nil {
		return nil, err
	}
	if err := checkOrderInColumns(optionsCtx.At("ORDER"), opts); err != nil {
		return nil, err
	}
	if transformation != nil {
		if err := checkColumnsGrouped(optionsCtx.At("COLUMNS"), opts.Columns, *transformation); err != nil {
			return nil, err
		}
	}

	id, kind := ctx.Dataset()
	if id == "" || kind == "" {
		return nil, ctx.Failure(ErrNoDataset, "QUERY must reference a dataset.")
	}

	body := queryir.Body{
		Dataset: id,
		Kind:    kind,
		Filter:  filter,
		Columns: opts.Columns,
		Order:   opts.Order,
	}
	if transformation != nil {
		return queryir.AggregateQuery{Body: body, Transformation: *transformation}, nil
	}
	return queryir.StandardQuery{Body: body}, nil
}

// CompileJSON decodes a JSON document and compiles it.
func CompileJSON(data []byte) (queryir.Query, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return Compile(raw)
}

// checkOrderInColumns requires every ORDER key to be a projected column.
func checkOrderInColumns(ctx Context, opts Options) error {
	if opts.Order == nil {
		return nil
	}
	columns := keyNames(opts.Columns)
	for _, k := range opts.Order.SortKeys() {
		if !slices.Contains(columns, k.Name()) {
			return ctx.Failure(ErrOrderNotInColumns, "ORDER key must be in COLUMNS (%s is missing).", k.Name())
		}
	}
	return nil
}

// checkColumnsGrouped requires every column of an aggregate query to be a
// GROUP key or an APPLY name.
func checkColumnsGrouped(ctx Context, columns []queryir.AnyKey, t queryir.Transformation) error {
	allowed := keyNames(t.GroupBy)
	for _, agg := range t.Aggregations {
		allowed = append(allowed, agg.Key.Value)
	}
	for i, k := range columns {
		if !slices.Contains(allowed, k.Name()) {
			return ctx.Index(i).Failure(ErrColumnNotGrouped, "Keys in COLUMNS must be in GROUP or APPLY when TRANSFORMATIONS is present (%s is not).", k.Name())
		}
	}
	return nil
}

func keyNames(keys []queryir.AnyKey) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name()
	}
	return names
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
