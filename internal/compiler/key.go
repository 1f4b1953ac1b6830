package compiler

import (
	"strings"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// ResolveKey resolves a raw field reference into a typed key.
//
// With allowAggregations set, a previously declared aggregation name
// resolves to a NumberKey. Otherwise raw must be "<id>_<field>": it is split
// on the first underscore and field must be a field of either schema. The
// id and kind are recorded in the shared state; a key disagreeing with an
// earlier one fails.
func ResolveKey(ctx Context, raw any, allowAggregations bool) (queryir.AnyKey, error) {
	input, ok := raw.(string)
	if !ok {
		return nil, ctx.Failure(ErrInvalidKey, "Key must be a string.")
	}

	if allowAggregations && ctx.isAggregation(input) {
		return queryir.NumberKey{Field: input, Value: input}, nil
	}

	id, field, found := strings.Cut(input, "_")
	if id == "" {
		return nil, ctx.Failure(ErrInvalidKey, "Key must start with a dataset ID.")
	}
	if strings.TrimSpace(id) == "" {
		return nil, ctx.Failure(ErrInvalidKey, "Dataset ID cannot be entirely whitespace.")
	}

	state := ctx.state
	if state.id != "" && state.id != id {
		return nil, ctx.Failure(ErrMultipleDatasets, "QUERY references more than one dataset (%q and %q).", state.id, id)
	}
	state.id = id

	if !found {
		return nil, ctx.Failure(ErrInvalidKey, "Key must have a field name.")
	}

	kind, ft, ok := ir.LookupField(field)
	if !ok {
		return nil, ctx.Failure(ErrInvalidKey, "Key must have a valid field name (%q is invalid).", field)
	}
	if state.kind != "" && state.kind != kind {
		return nil, ctx.Failure(ErrMultipleKinds, "QUERY references more than one kind of record (%q and %q).", state.kind, kind)
	}
	state.kind = kind

	if ft == ir.FieldNumber {
		return queryir.NumberKey{Field: field, Value: input}, nil
	}
	return queryir.StringKey{Field: field, Value: input}, nil
}

// resolveNumberKey resolves raw and requires a numeric key.
func resolveNumberKey(ctx Context, raw any, allowAggregations bool, op string) (queryir.NumberKey, error) {
	key, err := ResolveKey(ctx, raw, allowAggregations)
	if err != nil {
		return queryir.NumberKey{}, err
	}
	nk, ok := key.(queryir.NumberKey)
	if !ok {
		return queryir.NumberKey{}, ctx.Failure(ErrKeyType, "%s can only be used on numeric keys (%s is a string key).", op, key.Name())
	}
	return nk, nil
}

// resolveKeyList resolves a non-empty array of keys, one child path per
// element.
func resolveKeyList(ctx Context, raw any, allowAggregations bool, clause string, code string) ([]queryir.AnyKey, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, ctx.Failure(code, "%s must be an array.", clause)
	}

	keys := make([]queryir.AnyKey, 0, len(list))
	for i, elem := range list {
		key, err := ResolveKey(ctx.Index(i), elem, allowAggregations)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return nil, ctx.Failure(code, "%s must have at least one key.", clause)
	}
	return keys, nil
}
