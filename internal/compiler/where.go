package compiler

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// ParseWhere compiles a WHERE clause. An empty object compiles to None.
func ParseWhere(ctx Context, raw any) (queryir.Filter, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ctx.Failure(ErrFilterShape, "WHERE must be an object.")
	}
	if len(obj) == 0 {
		return queryir.None{}, nil
	}
	return parseFilter(ctx, obj)
}

// parseFilter compiles one non-empty filter node.
func parseFilter(ctx Context, raw any) (queryir.Filter, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ctx.Failure(ErrFilterShape, "Filter must be an object.")
	}
	if len(obj) != 1 {
		return nil, ctx.Failure(ErrFilterShape, "Filter must have exactly one key.")
	}

	op, body := onlyEntry(obj)
	switch op {
	case "GT":
		key, value, err := parseNumericComparison(ctx.At(op), body)
		if err != nil {
			return nil, err
		}
		return queryir.Greater{Key: key, Value: value}, nil
	case "LT":
		key, value, err := parseNumericComparison(ctx.At(op), body)
		if err != nil {
			return nil, err
		}
		return queryir.Lesser{Key: key, Value: value}, nil
	case "EQ":
		key, value, err := parseNumericComparison(ctx.At(op), body)
		if err != nil {
			return nil, err
		}
		return queryir.Equal{Key: key, Value: value}, nil
	case "IS":
		return parseIs(ctx.At(op), body)
	case "NOT":
		inner, err := parseFilter(ctx.At(op), body)
		if err != nil {
			return nil, err
		}
		return queryir.Not{Filter: inner}, nil
	case "AND":
		filters, err := parseFilterList(ctx.At(op), body, op)
		if err != nil {
			return nil, err
		}
		return queryir.And{Filters: filters}, nil
	case "OR":
		filters, err := parseFilterList(ctx.At(op), body, op)
		if err != nil {
			return nil, err
		}
		return queryir.Or{Filters: filters}, nil
	default:
		return nil, ctx.Failure(ErrFilterShape, "Filter must be one of the valid filter types (%s is invalid).", op)
	}
}

func parseFilterList(ctx Context, raw any, op string) ([]queryir.Filter, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, ctx.Failure(ErrFilterShape, "%s must be an array.", op)
	}

	filters := make([]queryir.Filter, 0, len(list))
	for i, elem := range list {
		f, err := parseFilter(ctx.Index(i), elem)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	if len(filters) == 0 {
		return nil, ctx.Failure(ErrFilterShape, "%s must have at least one filter.", op)
	}
	return filters, nil
}

func parseIs(ctx Context, raw any) (queryir.Filter, error) {
	key, value, err := parseComparison(ctx, raw)
	if err != nil {
		return nil, err
	}

	sk, ok := key.(queryir.StringKey)
	if !ok {
		return nil, ctx.Failure(ErrKeyType, "IS can only be used on string keys (%s is a numeric key).", key.Name())
	}

	pattern, ok := value.(string)
	if !ok {
		return nil, ctx.Failure(ErrLiteralType, "IS value must be a string.")
	}
	if !queryir.ValidPattern(pattern) {
		return nil, ctx.Failure(ErrWildcard, "IS value can only have asterisks at the beginning and end.")
	}

	// Stored strings are NFC; patterns must be too.
	return queryir.Like{Key: sk, Value: norm.NFC.String(pattern)}, nil
}

func parseNumericComparison(ctx Context, raw any) (queryir.NumberKey, float64, error) {
	key, value, err := parseComparison(ctx, raw)
	if err != nil {
		return queryir.NumberKey{}, 0, err
	}

	nk, ok := key.(queryir.NumberKey)
	if !ok {
		return queryir.NumberKey{}, 0, ctx.Failure(ErrKeyType, "LT/GT/EQ can only be used on numeric keys (%s is a string key).", key.Name())
	}

	n, ok := ir.AsNumber(value)
	if !ok {
		return queryir.NumberKey{}, 0, ctx.Failure(ErrLiteralType, "Comparison value must be a number.")
	}
	return nk, n, nil
}

// parseComparison unpacks a single-entry {key: value} object.
func parseComparison(ctx Context, raw any) (queryir.AnyKey, any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, ctx.Failure(ErrFilterShape, "Comparison must be an object.")
	}
	if len(obj) != 1 {
		return nil, nil, ctx.Failure(ErrFilterShape, "Comparison must have exactly one key.")
	}

	k, v := onlyEntry(obj)
	key, err := ResolveKey(ctx, k, false)
	if err != nil {
		return nil, nil, err
	}
	return key, v, nil
}

// onlyEntry returns the key and value of a single-entry object.
func onlyEntry(obj map[string]any) (string, any) {
	for k, v := range obj {
		return k, v
	}
	return "", nil
}
