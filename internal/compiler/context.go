package compiler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/insight/internal/ir"
)

// shared is the mutable state every Context derived from one root sees.
type shared struct {
	id           string
	kind         ir.Kind
	aggregations []string
}

// Context carries the current path for error messages and a reference to
// the state shared by the whole compile call: the dataset id and record
// kind fixed so far, and the aggregation names declared so far.
//
// Child contexts from At and Index share state with their parent. A Context
// belongs to a single compile call and must not be shared across queries.
type Context struct {
	path  []string
	state *shared
}

// NewContext returns a root context at path "QUERY".
func NewContext() Context {
	return Context{path: []string{"QUERY"}, state: &shared{}}
}

// At returns a child context with name appended to the path.
func (c Context) At(name string) Context {
	return Context{path: append(slices.Clip(c.path), name), state: c.state}
}

// Index returns a child context for element i of a list.
func (c Context) Index(i int) Context {
	return c.At("[" + strconv.Itoa(i) + "]")
}

// Path renders the path, e.g. "QUERY.WHERE.AND[0].GT".
func (c Context) Path() string {
	var b strings.Builder
	for i, elem := range c.path {
		if i > 0 && !strings.HasPrefix(elem, "[") {
			b.WriteByte('.')
		}
		b.WriteString(elem)
	}
	return b.String()
}

// Failure builds a ValidationError at the current path.
func (c Context) Failure(code, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:   code,
		Path:   c.Path(),
		Reason: fmt.Sprintf(format, args...),
	}
}

// Dataset returns the dataset id and record kind resolved so far.
// Both are empty until a key referencing a record field has been resolved.
func (c Context) Dataset() (string, ir.Kind) {
	return c.state.id, c.state.kind
}

// declareAggregation records an aggregation output name.
func (c Context) declareAggregation(name string) {
	c.state.aggregations = append(c.state.aggregations, name)
}

// isAggregation reports whether name was declared by APPLY.
func (c Context) isAggregation(name string) bool {
	return slices.Contains(c.state.aggregations, name)
}
