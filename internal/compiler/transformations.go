package compiler

import (
	"strings"

	"github.com/roach88/insight/internal/queryir"
)

// ParseTransformations compiles a TRANSFORMATIONS clause.
//
// Each APPLY name is declared in the shared state as soon as it is parsed,
// so COLUMNS and ORDER (parsed afterwards) can reference it.
func ParseTransformations(ctx Context, raw any) (queryir.Transformation, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return queryir.Transformation{}, ctx.Failure(ErrTransformationShape, "TRANSFORMATIONS must be an object.")
	}
	if _, ok := obj["GROUP"]; !ok {
		return queryir.Transformation{}, ctx.Failure(ErrTransformationShape, "TRANSFORMATIONS must have a GROUP clause.")
	}
	if _, ok := obj["APPLY"]; !ok {
		return queryir.Transformation{}, ctx.Failure(ErrTransformationShape, "TRANSFORMATIONS must have an APPLY clause.")
	}
	if len(obj) != 2 {
		return queryir.Transformation{}, ctx.Failure(ErrTransformationShape, "TRANSFORMATIONS can only have GROUP and APPLY clauses.")
	}

	groupBy, err := resolveKeyList(ctx.At("GROUP"), obj["GROUP"], false, "GROUP", ErrTransformationShape)
	if err != nil {
		return queryir.Transformation{}, err
	}

	aggregations, err := parseApply(ctx.At("APPLY"), obj["APPLY"])
	if err != nil {
		return queryir.Transformation{}, err
	}

	return queryir.Transformation{GroupBy: groupBy, Aggregations: aggregations}, nil
}

func parseApply(ctx Context, raw any) ([]queryir.Aggregation, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, ctx.Failure(ErrTransformationShape, "APPLY must be an array.")
	}

	aggregations := make([]queryir.Aggregation, 0, len(list))
	for i, elem := range list {
		agg, err := parseApplyRule(ctx.Index(i), elem)
		if err != nil {
			return nil, err
		}
		aggregations = append(aggregations, agg)
	}
	return aggregations, nil
}

// parseApplyRule compiles {"<name>": {"<TOKEN>": "<key>"}}.
func parseApplyRule(ctx Context, raw any) (queryir.Aggregation, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return queryir.Aggregation{}, ctx.Failure(ErrTransformationShape, "APPLY rule must be an object.")
	}
	if len(obj) != 1 {
		return queryir.Aggregation{}, ctx.Failure(ErrTransformationShape, "APPLY rule must have exactly one key.")
	}

	name, body := onlyEntry(obj)
	switch {
	case name == "":
		return queryir.Aggregation{}, ctx.Failure(ErrAggregationName, "APPLY key cannot be empty.")
	case strings.Contains(name, "_"):
		return queryir.Aggregation{}, ctx.Failure(ErrAggregationName, "APPLY key cannot contain underscores (%q is invalid).", name)
	case ctx.isAggregation(name):
		return queryir.Aggregation{}, ctx.Failure(ErrAggregationName, "APPLY key %q is declared more than once.", name)
	}
	ctx.declareAggregation(name)

	aggregate, err := parseAggregate(ctx.At(name), body)
	if err != nil {
		return queryir.Aggregation{}, err
	}

	return queryir.Aggregation{
		Key:       queryir.NumberKey{Field: name, Value: name},
		Aggregate: aggregate,
	}, nil
}

func parseAggregate(ctx Context, raw any) (queryir.Aggregate, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ctx.Failure(ErrTransformationShape, "APPLY body must be an object.")
	}
	if len(obj) != 1 {
		return nil, ctx.Failure(ErrTransformationShape, "APPLY body must have exactly one key.")
	}

	token, operand := onlyEntry(obj)
	child := ctx.At(token)

	if token == "COUNT" {
		key, err := ResolveKey(child, operand, false)
		if err != nil {
			return nil, err
		}
		return queryir.Count{Key: key}, nil
	}

	switch token {
	case "MAX", "MIN", "AVG", "SUM":
	default:
		return nil, ctx.Failure(ErrApplyToken, "APPLY token must be one of MAX, MIN, AVG, SUM or COUNT (%s is invalid).", token)
	}

	key, err := resolveNumberKey(child, operand, false, token)
	if err != nil {
		return nil, err
	}

	switch token {
	case "MAX":
		return queryir.Max{Key: key}, nil
	case "MIN":
		return queryir.Min{Key: key}, nil
	case "AVG":
		return queryir.Avg{Key: key}, nil
	default:
		return queryir.Sum{Key: key}, nil
	}
}
