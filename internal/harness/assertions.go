package harness

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/insight/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string           // Assertion type for categorization
	Expected string           // Human-readable expected outcome
	Actual   string           // Human-readable actual outcome
	Rows     []map[string]any // Result rows for debugging context
}

// maxContextRows bounds the rows printed with a failed assertion.
const maxContextRows = 10

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Rows) > 0 {
		fmt.Fprintf(&buf, "\nResult rows (%d):\n", len(e.Rows))
		for i, row := range e.Rows {
			if i == maxContextRows {
				fmt.Fprintf(&buf, "  ... %d more\n", len(e.Rows)-maxContextRows)
				break
			}
			fmt.Fprintf(&buf, "  [%d] %s\n", i, formatRow(row))
		}
	}

	return buf.String()
}

// assertRowCount checks the number of result rows.
func assertRowCount(result *Result, assertion Assertion) error {
	if len(result.Rows) != assertion.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows", assertion.Count),
			Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
			Rows:     result.Rows,
		}
	}
	return nil
}

// assertRowsEqual checks the result rows exactly, in order unless the
// assertion is unordered.
func assertRowsEqual(result *Result, assertion Assertion) error {
	expected, err := normalizeRows(assertion.Rows)
	if err != nil {
		return err
	}

	actual := result.Rows
	if assertion.Unordered {
		expected = sortedRows(expected)
		actual = sortedRows(actual)
	}

	if len(expected) != len(actual) {
		return &AssertionError{
			Type:     AssertRowsEqual,
			Expected: fmt.Sprintf("%d rows", len(expected)),
			Actual:   fmt.Sprintf("%d rows", len(actual)),
			Rows:     result.Rows,
		}
	}
	for i := range expected {
		if !reflect.DeepEqual(expected[i], actual[i]) {
			return &AssertionError{
				Type:     AssertRowsEqual,
				Expected: fmt.Sprintf("row %d = %s", i, formatRow(expected[i])),
				Actual:   fmt.Sprintf("row %d = %s", i, formatRow(actual[i])),
				Rows:     result.Rows,
			}
		}
	}
	return nil
}

// assertRowsContain checks that every expected row is among the results.
func assertRowsContain(result *Result, assertion Assertion) error {
	expected, err := normalizeRows(assertion.Rows)
	if err != nil {
		return err
	}

	for _, want := range expected {
		found := slices.ContainsFunc(result.Rows, func(row map[string]any) bool {
			return reflect.DeepEqual(row, want)
		})
		if !found {
			return &AssertionError{
				Type:     AssertRowsContain,
				Expected: fmt.Sprintf("row %s", formatRow(want)),
				Actual:   "not found in results",
				Rows:     result.Rows,
			}
		}
	}
	return nil
}

// assertColumns checks that every row has exactly the listed keys.
func assertColumns(result *Result, assertion Assertion) error {
	want := slices.Clone(assertion.Keys)
	sort.Strings(want)

	for i, row := range result.Rows {
		got := sortedKeys(row)
		if !slices.Equal(got, want) {
			return &AssertionError{
				Type:     AssertColumns,
				Expected: fmt.Sprintf("columns %v", want),
				Actual:   fmt.Sprintf("row %d has columns %v", i, got),
				Rows:     result.Rows,
			}
		}
	}
	return nil
}

// assertOrderedBy checks that rows are sorted lexicographically on the
// assertion's keys in its direction.
func assertOrderedBy(result *Result, assertion Assertion) error {
	descending := assertion.Dir == "DOWN"

	for i := 1; i < len(result.Rows); i++ {
		cmp, err := compareOn(result.Rows[i-1], result.Rows[i], assertion.Keys)
		if err != nil {
			return err
		}
		if (!descending && cmp > 0) || (descending && cmp < 0) {
			dir := "UP"
			if descending {
				dir = "DOWN"
			}
			return &AssertionError{
				Type:     AssertOrderedBy,
				Expected: fmt.Sprintf("rows sorted %s on %v", dir, assertion.Keys),
				Actual: fmt.Sprintf("row %d %s is out of order with row %d %s",
					i-1, formatRow(result.Rows[i-1]), i, formatRow(result.Rows[i])),
				Rows: result.Rows,
			}
		}
	}
	return nil
}

// assertError checks the query failure.
func assertError(result *Result, assertion Assertion) error {
	if result.Error == nil {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("query to fail with class %s", assertion.Class),
			Actual:   fmt.Sprintf("query succeeded with %d rows", len(result.Rows)),
			Rows:     result.Rows,
		}
	}

	actual := fmt.Sprintf("class %s, code %q: %s", result.Error.Class, result.Error.Code, result.Error.Message)
	if result.Error.Class != assertion.Class {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("class %s", assertion.Class),
			Actual:   actual,
		}
	}
	if assertion.Code != "" && result.Error.Code != assertion.Code {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("code %s", assertion.Code),
			Actual:   actual,
		}
	}
	if assertion.Message != "" && !strings.Contains(result.Error.Message, assertion.Message) {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("message containing %q", assertion.Message),
			Actual:   actual,
		}
	}
	return nil
}

// compareOn compares two rows key by key with ir.Compare.
func compareOn(a, b map[string]any, keys []string) (int, error) {
	for _, key := range keys {
		av, err := ir.ValueOf(a[key])
		if err != nil {
			return 0, fmt.Errorf("ordered_by: key %q: %w", key, err)
		}
		bv, err := ir.ValueOf(b[key])
		if err != nil {
			return 0, fmt.Errorf("ordered_by: key %q: %w", key, err)
		}
		if c := ir.Compare(av, bv); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// sortedRows returns rows sorted by their canonical JSON form.
func sortedRows(rows []map[string]any) []map[string]any {
	out := slices.Clone(rows)
	sort.SliceStable(out, func(i, j int) bool {
		return formatRow(out[i]) < formatRow(out[j])
	})
	return out
}

// formatRow renders a row as canonical JSON, falling back to %v.
func formatRow(row map[string]any) string {
	data, err := ir.MarshalCanonical(row)
	if err != nil {
		return fmt.Sprintf("%v", row)
	}
	return string(data)
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRowCount:
			err = assertRowCount(result, assertion)
		case AssertRowsEqual:
			err = assertRowsEqual(result, assertion)
		case AssertRowsContain:
			err = assertRowsContain(result, assertion)
		case AssertColumns:
			err = assertColumns(result, assertion)
		case AssertOrderedBy:
			err = assertOrderedBy(result, assertion)
		case AssertError:
			err = assertError(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
