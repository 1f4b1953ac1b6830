package queryir

// Encode converts a query back into the raw query shape accepted by the
// compiler. Numbers are float64, lists are []any and objects are
// map[string]any, so the result can be marshaled canonically or compiled
// again.
func Encode(q Query) map[string]any {
	body := q.QueryBody()
	out := map[string]any{
		"WHERE":   EncodeFilter(body.Filter),
		"OPTIONS": encodeOptions(body),
	}
	if aq, ok := q.(AggregateQuery); ok {
		out["TRANSFORMATIONS"] = encodeTransformation(aq.Transformation)
	}
	return out
}

// EncodeFilter converts a filter tree into its raw WHERE form.
// A nil filter encodes like None.
func EncodeFilter(f Filter) map[string]any {
	switch filter := f.(type) {
	case Greater:
		return comparison("GT", filter.Key, filter.Value)
	case Lesser:
		return comparison("LT", filter.Key, filter.Value)
	case Equal:
		return comparison("EQ", filter.Key, filter.Value)
	case Like:
		return map[string]any{"IS": map[string]any{filter.Key.Value: filter.Value}}
	case Not:
		return map[string]any{"NOT": EncodeFilter(filter.Filter)}
	case And:
		return map[string]any{"AND": encodeFilters(filter.Filters)}
	case Or:
		return map[string]any{"OR": encodeFilters(filter.Filters)}
	default:
		return map[string]any{}
	}
}

func comparison(op string, key NumberKey, value float64) map[string]any {
	return map[string]any{op: map[string]any{key.Value: value}}
}

func encodeFilters(filters []Filter) []any {
	out := make([]any, len(filters))
	for i, f := range filters {
		out[i] = EncodeFilter(f)
	}
	return out
}

func encodeKeys(keys []AnyKey) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k.Name()
	}
	return out
}

func encodeOptions(body Body) map[string]any {
	options := map[string]any{
		"COLUMNS": encodeKeys(body.Columns),
	}
	switch order := body.Order.(type) {
	case Simple:
		options["ORDER"] = order.Key.Name()
	case Complex:
		options["ORDER"] = map[string]any{
			"dir":  order.Direction.String(),
			"keys": encodeKeys(order.Keys),
		}
	}
	return options
}

func encodeTransformation(t Transformation) map[string]any {
	apply := make([]any, len(t.Aggregations))
	for i, agg := range t.Aggregations {
		apply[i] = map[string]any{
			agg.Key.Value: map[string]any{
				agg.Aggregate.Token(): agg.Aggregate.Operand().Name(),
			},
		}
	}
	return map[string]any{
		"GROUP": encodeKeys(t.GroupBy),
		"APPLY": apply,
	}
}
