package queryir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/insight/internal/ir"
)

// Validate checks the structural invariants the interpreter relies on:
//  1. Every key list is non-empty
//  2. Every field key belongs to the query's dataset and kind, with the
//     type tag the schema declares
//  3. Aggregation names are non-empty, underscore-free and unique
//  4. Like patterns only carry wildcards at either end
//  5. Filter trees contain no nil nodes and no empty And/Or
//
// The compiler only produces queries that pass. Validate exists for IR
// built by hand (tests, tools) and as the interpreter's entry check.
// It returns every problem found, joined.
//
// Validate is a pure function with no side effects.
func Validate(query Query) error {
	if query == nil {
		return errors.New("nil query")
	}

	v := &validator{body: query.QueryBody(), aggregations: map[string]bool{}}
	if _, ok := ir.SchemaFor(v.body.Kind); !ok {
		v.addProblem("unknown record kind %q", v.body.Kind)
	}
	if v.body.Dataset == "" || strings.Contains(v.body.Dataset, "_") {
		v.addProblem("invalid dataset id %q", v.body.Dataset)
	}

	if aq, ok := query.(AggregateQuery); ok {
		v.validateTransformation(aq.Transformation)
	}

	if v.body.Filter == nil {
		v.addProblem("nil filter: an empty WHERE compiles to None")
	} else {
		v.validateFilter(v.body.Filter)
	}
	v.validateKeys("COLUMNS", v.body.Columns, true)
	if v.body.Order != nil {
		v.validateKeys("ORDER", v.body.Order.SortKeys(), true)
	}

	return errors.Join(v.problems...)
}

// validator accumulates problems during traversal.
type validator struct {
	body         Body
	aggregations map[string]bool
	problems     []error
}

// addProblem appends a problem message.
func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Errorf(format, args...))
}

func (v *validator) validateTransformation(t Transformation) {
	for _, agg := range t.Aggregations {
		name := agg.Key.Value
		switch {
		case name == "" || strings.Contains(name, "_"):
			v.addProblem("invalid aggregation name %q", name)
		case v.aggregations[name]:
			v.addProblem("duplicate aggregation name %q", name)
		}
		v.aggregations[name] = true

		if agg.Aggregate == nil {
			v.addProblem("aggregation %q has no operation", name)
			continue
		}
		v.validateKey(agg.Aggregate.Operand(), false)
	}
	v.validateKeys("GROUP", t.GroupBy, false)
}

func (v *validator) validateKeys(clause string, keys []AnyKey, allowAggregations bool) {
	if len(keys) == 0 {
		v.addProblem("%s must be a non-empty key list", clause)
	}
	for _, k := range keys {
		v.validateKey(k, allowAggregations)
	}
}

func (v *validator) validateKey(k AnyKey, allowAggregations bool) {
	if k == nil {
		v.addProblem("nil key")
		return
	}

	if allowAggregations && v.aggregations[k.Name()] {
		if k.Type() != ir.FieldNumber {
			v.addProblem("aggregation key %q must be numeric", k.Name())
		}
		return
	}

	if k.Name() != v.body.Dataset+"_"+k.FieldName() {
		v.addProblem("key %q does not reference dataset %q", k.Name(), v.body.Dataset)
		return
	}
	schema, ok := ir.SchemaFor(v.body.Kind)
	if !ok {
		return
	}
	ft, ok := schema.FieldType(k.FieldName())
	if !ok {
		v.addProblem("key %q is not a %s field", k.Name(), v.body.Kind)
		return
	}
	if ft != k.Type() {
		v.addProblem("key %q is tagged %s but the field is a %s", k.Name(), k.Type(), ft)
	}
}

func (v *validator) validateFilter(f Filter) {
	switch filter := f.(type) {
	case Greater:
		v.validateKey(filter.Key, false)
	case Lesser:
		v.validateKey(filter.Key, false)
	case Equal:
		v.validateKey(filter.Key, false)
	case Like:
		v.validateKey(filter.Key, false)
		if !ValidPattern(filter.Value) {
			v.addProblem("pattern %q has an interior wildcard", filter.Value)
		}
	case Not:
		if filter.Filter == nil {
			v.addProblem("NOT wraps a nil filter")
			return
		}
		v.validateFilter(filter.Filter)
	case And:
		v.validateFilterList("AND", filter.Filters)
	case Or:
		v.validateFilterList("OR", filter.Filters)
	case None:
	default:
		v.addProblem("unknown filter type: %T", f)
	}
}

func (v *validator) validateFilterList(op string, filters []Filter) {
	if len(filters) == 0 {
		v.addProblem("%s must be a non-empty filter list", op)
	}
	for _, f := range filters {
		if f == nil {
			v.addProblem("%s contains a nil filter", op)
			continue
		}
		v.validateFilter(f)
	}
}

// ValidPattern reports whether an IS pattern only uses '*' as its first
// and/or last character.
func ValidPattern(pattern string) bool {
	inner := strings.TrimPrefix(pattern, "*")
	inner = strings.TrimSuffix(inner, "*")
	return !strings.Contains(inner, "*")
}
