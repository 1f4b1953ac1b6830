package compiler

import (
	"fmt"

	"github.com/roach88/insight/internal/queryir"
)

// Options is a compiled OPTIONS clause.
type Options struct {
	Columns []queryir.AnyKey
	Order   queryir.Order // nil without ORDER
}

// ParseOptions compiles an OPTIONS clause. Keys may reference aggregation
// names declared by an earlier TRANSFORMATIONS clause.
func ParseOptions(ctx Context, raw any) (Options, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Options{}, ctx.Failure(ErrOptionsShape, "OPTIONS must be an object.")
	}
	for _, k := range sortedKeys(obj) {
		if k != "COLUMNS" && k != "ORDER" {
			return Options{}, ctx.Failure(ErrOptionsShape, "OPTIONS can only have COLUMNS and ORDER clauses (%s is invalid).", k)
		}
	}
	if _, ok := obj["COLUMNS"]; !ok {
		return Options{}, ctx.Failure(ErrOptionsShape, "OPTIONS must have a COLUMNS clause.")
	}

	columns, err := resolveKeyList(ctx.At("COLUMNS"), obj["COLUMNS"], true, "COLUMNS", ErrOptionsShape)
	if err != nil {
		return Options{}, err
	}
	opts := Options{Columns: columns}

	if raw, ok := obj["ORDER"]; ok {
		opts.Order, err = parseOrder(ctx.At("ORDER"), raw)
		if err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

func parseOrder(ctx Context, raw any) (queryir.Order, error) {
	if s, ok := raw.(string); ok {
		key, err := ResolveKey(ctx, s, true)
		if err != nil {
			return nil, err
		}
		return queryir.Simple{Key: key}, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ctx.Failure(ErrOptionsShape, "ORDER must be a string or an object.")
	}
	if _, ok := obj["dir"]; !ok {
		return nil, ctx.Failure(ErrOptionsShape, "ORDER object must have a DIR clause.")
	}
	if _, ok := obj["keys"]; !ok {
		return nil, ctx.Failure(ErrOptionsShape, "ORDER object must have a KEYS clause.")
	}
	if len(obj) != 2 {
		return nil, ctx.Failure(ErrOptionsShape, "ORDER object must only have DIR and KEYS clauses.")
	}

	var dir queryir.Direction
	switch obj["dir"] {
	case "UP":
		dir = queryir.Ascending
	case "DOWN":
		dir = queryir.Descending
	default:
		return nil, ctx.At("DIR").Failure(ErrOptionsShape, "DIR must be \"UP\" or \"DOWN\" (%s is invalid).", describe(obj["dir"]))
	}

	keys, err := resolveKeyList(ctx.At("KEYS"), obj["keys"], true, "KEYS", ErrOptionsShape)
	if err != nil {
		return nil, err
	}
	return queryir.Complex{Direction: dir, Keys: keys}, nil
}

// describe renders an arbitrary raw value for an error message.
func describe(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
