package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/insight/internal/ir"
)

// Scenario defines a query conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// MaxResults overrides the engine's row/group limit when positive.
	MaxResults int `yaml:"max_results,omitempty"`

	// Datasets are added to the catalog, in order, before the query runs.
	Datasets []DatasetStep `yaml:"datasets"`

	// Query is the raw query, in the same shape as a JSON request body.
	Query any `yaml:"query"`

	// Assertions validate the query outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// DatasetStep adds one dataset. Exactly one of File, Records and Generate
// must be set.
type DatasetStep struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`

	// File is a JSON or CUE record file. Relative paths are resolved from
	// the scenario file's directory by LoadScenario.
	File string `yaml:"file,omitempty"`

	// Records are inline records, checked against the kind's schema.
	Records []map[string]any `yaml:"records,omitempty"`

	// Generate builds this many synthetic records (testutil.Rooms or
	// testutil.Sections).
	Generate int `yaml:"generate,omitempty"`
}

// Assertion validates the query outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "row_count": exact number of rows
	// - "rows_equal": exact rows, in order unless Unordered
	// - "rows_contain": subset of rows, any order
	// - "columns": exact key set of every row
	// - "ordered_by": rows sorted on Keys in Dir
	// - "error": the query failed with Class (and Code/Message if set)
	Type string `yaml:"type"`

	// Count is the expected number of rows (used by row_count).
	Count int `yaml:"count,omitempty"`

	// Rows are the expected rows (used by rows_equal and rows_contain).
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Unordered makes rows_equal ignore row order.
	Unordered bool `yaml:"unordered,omitempty"`

	// Keys are column names (used by columns and ordered_by).
	Keys []string `yaml:"keys,omitempty"`

	// Dir is "UP" or "DOWN" (used by ordered_by). Defaults to UP.
	Dir string `yaml:"dir,omitempty"`

	// Class is the expected error class, e.g. "invalid" (used by error).
	Class string `yaml:"class,omitempty"`

	// Code is the expected validation code, e.g. "E210" (used by error).
	Code string `yaml:"code,omitempty"`

	// Message must be a substring of the error message (used by error).
	Message string `yaml:"message,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount    = "row_count"
	AssertRowsEqual   = "rows_equal"
	AssertRowsContain = "rows_contain"
	AssertColumns     = "columns"
	AssertOrderedBy   = "ordered_by"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Relative dataset file paths are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	for i := range scenario.Datasets {
		file := scenario.Datasets[i].File
		if file != "" && !filepath.IsAbs(file) {
			scenario.Datasets[i].File = filepath.Join(baseDir, file)
		}
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML. Dataset file paths are
// left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and well-formed.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.MaxResults < 0 {
		return fmt.Errorf("max_results must be non-negative")
	}
	if s.Query == nil {
		return fmt.Errorf("query is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("at least one assertion is required")
	}

	for i, d := range s.Datasets {
		if err := validateDatasetStep(i, d); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateDatasetStep(index int, d DatasetStep) error {
	if d.ID == "" {
		return fmt.Errorf("datasets[%d]: id is required", index)
	}
	if _, err := ir.ParseKind(d.Kind); err != nil {
		return fmt.Errorf("datasets[%d]: %w", index, err)
	}

	sources := 0
	if d.File != "" {
		sources++
	}
	if d.Records != nil {
		sources++
	}
	if d.Generate != 0 {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("datasets[%d]: exactly one of file, records or generate is required", index)
	}
	if d.Generate < 0 {
		return fmt.Errorf("datasets[%d]: generate must be positive", index)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertRowsEqual:
		if a.Rows == nil {
			return fmt.Errorf("assertions[%d]: rows is required for rows_equal", index)
		}
	case AssertRowsContain:
		if len(a.Rows) == 0 {
			return fmt.Errorf("assertions[%d]: rows is required for rows_contain", index)
		}
	case AssertColumns:
		if len(a.Keys) == 0 {
			return fmt.Errorf("assertions[%d]: keys is required for columns", index)
		}
	case AssertOrderedBy:
		if len(a.Keys) == 0 {
			return fmt.Errorf("assertions[%d]: keys is required for ordered_by", index)
		}
		if a.Dir != "" && a.Dir != "UP" && a.Dir != "DOWN" {
			return fmt.Errorf("assertions[%d]: dir must be UP or DOWN, got %q", index, a.Dir)
		}
	case AssertError:
		if a.Class == "" {
			return fmt.Errorf("assertions[%d]: class is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
