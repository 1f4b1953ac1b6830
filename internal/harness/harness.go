package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/dataset"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/insight"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/store"
	"github.com/roach88/insight/internal/testutil"
)

// Harness is the scenario execution engine.
// It owns a fresh in-memory catalog and a facade with a fixed query id.
type Harness struct {
	store  *store.Store
	facade *insight.Facade
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Add every dataset in order
// 3. Run the query through the facade
// 4. Evaluate assertions against the outcome
//
// An error is returned only when the scenario itself cannot be set up; a
// failing query is part of the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	// Create fresh in-memory SQLite database
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var engineOpts []engine.EngineOption
	if scenario.MaxResults > 0 {
		engineOpts = append(engineOpts, engine.WithMaxResults(scenario.MaxResults))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store: st,
		facade: insight.NewFacade(st,
			insight.WithLogger(logger),
			insight.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.Name)),
			insight.WithEngineOptions(engineOpts...),
		),
		logger: logger,
	}

	if err := h.addDatasets(ctx, scenario.Datasets); err != nil {
		return nil, fmt.Errorf("failed to add datasets: %w", err)
	}

	query, err := normalize(scenario.Query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	result := NewResult()
	rows, err := h.facade.PerformQuery(ctx, query)
	if err != nil {
		result.Error = &QueryError{
			Class:   insight.Classify(err).String(),
			Code:    compiler.ValidationCode(err),
			Message: err.Error(),
		}
	} else {
		result.Rows = plainRows(rows)
	}

	if result.Error != nil && !expectsError(scenario.Assertions) {
		result.AddError(fmt.Sprintf("query failed unexpectedly (%s): %s", result.Error.Class, result.Error.Message))
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// addDatasets adds every dataset step to the catalog, in order.
func (h *Harness) addDatasets(ctx context.Context, steps []DatasetStep) error {
	for i, step := range steps {
		kind, err := ir.ParseKind(step.Kind)
		if err != nil {
			return fmt.Errorf("dataset %d: %w", i, err)
		}

		records, err := stepRecords(step, kind)
		if err != nil {
			return fmt.Errorf("dataset %d (%s): %w", i, step.ID, err)
		}

		if _, err := h.facade.AddDataset(ctx, step.ID, kind, records); err != nil {
			return fmt.Errorf("dataset %d (%s): %w", i, step.ID, err)
		}

		h.logger.Info("dataset added",
			"step", i,
			"dataset", step.ID,
			"kind", kind,
			"rows", len(records),
		)
	}
	return nil
}

// stepRecords builds the records of one dataset step.
func stepRecords(step DatasetStep, kind ir.Kind) ([]ir.Record, error) {
	switch {
	case step.File != "":
		return dataset.LoadFile(step.File, kind)
	case step.Generate > 0:
		if kind == ir.KindRooms {
			return testutil.Rooms(step.Generate), nil
		}
		return testutil.Sections(step.Generate), nil
	default:
		// Inline records go through the same schema check as record files.
		raw, err := normalize(toAnySlice(step.Records))
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode inline records: %w", err)
		}
		return dataset.Decode(kind, data)
	}
}

// normalize converts YAML-decoded values to the shapes encoding/json
// produces: every number becomes float64, objects map[string]any and
// arrays []any. Booleans and nulls pass through unchanged.
func normalize(val any) (any, error) {
	switch v := val.(type) {
	case nil, string, bool, float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case []any:
		arr := make([]any, len(v))
		for i, elem := range v {
			n, err := normalize(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = n
		}
		return arr, nil
	case map[string]any:
		obj := make(map[string]any, len(v))
		for key, elem := range v {
			n, err := normalize(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			obj[key] = n
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
}

// normalizeRows normalizes expected rows from an assertion.
func normalizeRows(rows []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		n, err := normalize(row)
		if err != nil {
			return nil, fmt.Errorf("rows[%d]: %w", i, err)
		}
		out[i] = n.(map[string]any)
	}
	return out, nil
}

func toAnySlice(rows []map[string]any) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out
}

// plainRows converts result rows to plain Go values.
func plainRows(rows []ir.Record) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, rec := range rows {
		row := make(map[string]any, len(rec))
		for k, v := range rec {
			row[k] = ir.Interface(v)
		}
		out[i] = row
	}
	return out
}

func expectsError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertError {
			return true
		}
	}
	return false
}
