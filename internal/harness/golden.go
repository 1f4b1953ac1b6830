package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/insight/internal/ir"
)

// Snapshot captures the outcome of a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Rows         []map[string]any
	Error        *QueryError
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. The error message is left out so golden files do not pin
// wording; class and code are kept.
func (s *Snapshot) toCanonicalMap() map[string]any {
	result := map[string]any{
		"scenario_name": s.ScenarioName,
	}
	if s.Error != nil {
		errMap := map[string]any{"class": s.Error.Class}
		if s.Error.Code != "" {
			errMap["code"] = s.Error.Code
		}
		result["error"] = errMap
		return result
	}

	rows := make([]any, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = row
	}
	result["rows"] = rows
	return result
}

// MarshalSnapshot renders the snapshot of result as canonical JSON followed
// by a newline.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Rows:         result.Rows,
		Error:        result.Error,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Assertion failures and golden
// mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	// Compare with golden file using goldie
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
