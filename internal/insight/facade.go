package insight

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/metrics"
	"github.com/roach88/insight/internal/store"
)

// Facade is the application surface: dataset catalog operations plus query
// evaluation against the catalog.
type Facade struct {
	store  *store.Store
	engine *engine.Engine
	ids    QueryIDGenerator
	logger *slog.Logger
}

// FacadeOption configures a Facade.
type FacadeOption func(*Facade)

// WithIDGenerator sets the query id generator. Defaults to UUIDv7Generator.
func WithIDGenerator(gen QueryIDGenerator) FacadeOption {
	return func(f *Facade) {
		f.ids = gen
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) FacadeOption {
	return func(f *Facade) {
		f.logger = logger
	}
}

// WithEngineOptions configures the engine used for every query.
func WithEngineOptions(opts ...engine.EngineOption) FacadeOption {
	return func(f *Facade) {
		f.engine = engine.New(opts...)
	}
}

// NewFacade creates a facade over an open catalog.
func NewFacade(st *store.Store, opts ...FacadeOption) *Facade {
	f := &Facade{
		store:  st,
		engine: engine.New(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Store returns the underlying catalog.
func (f *Facade) Store() *store.Store {
	return f.store
}

// AddDataset adds records under id and returns the ids of every dataset in
// the catalog, in insertion order.
func (f *Facade) AddDataset(ctx context.Context, id string, kind ir.Kind, records []ir.Record) ([]string, error) {
	info, err := f.store.AddDataset(ctx, id, kind, records)
	metrics.DatasetOperationsTotal.WithLabelValues("add", metrics.Status(err)).Inc()
	if err != nil {
		f.logger.Warn("add dataset failed", "dataset", id, "kind", kind, "error", err)
		return nil, err
	}
	f.logger.Info("dataset added",
		"dataset", info.ID,
		"kind", info.Kind,
		"rows", info.NumRows,
		"content_hash", info.ContentHash,
	)

	infos, err := f.store.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids, nil
}

// RemoveDataset removes a dataset and returns its id.
func (f *Facade) RemoveDataset(ctx context.Context, id string) (string, error) {
	err := f.store.RemoveDataset(ctx, id)
	metrics.DatasetOperationsTotal.WithLabelValues("remove", metrics.Status(err)).Inc()
	if err != nil {
		f.logger.Warn("remove dataset failed", "dataset", id, "error", err)
		return "", err
	}
	f.logger.Info("dataset removed", "dataset", id)
	return id, nil
}

// ListDatasets returns every dataset in insertion order.
func (f *Facade) ListDatasets(ctx context.Context) ([]store.DatasetInfo, error) {
	infos, err := f.store.ListDatasets(ctx)
	metrics.DatasetOperationsTotal.WithLabelValues("list", metrics.Status(err)).Inc()
	return infos, err
}

// PerformQuery evaluates raw against the catalog.
//
// Every call gets a query id from the configured generator; the id, the
// query fingerprint, the dataset, the row count and the duration are logged
// once the query finishes.
func (f *Facade) PerformQuery(ctx context.Context, raw any) ([]ir.Record, error) {
	queryID := f.ids.Generate()
	start := time.Now()

	q, rows, err := evaluate(ctx, raw, f.store, f.engine)
	elapsed := time.Since(start)

	attrs := []any{"query_id", queryID}
	if hash, hashErr := ir.QueryHash(raw); hashErr == nil {
		attrs = append(attrs, "query_hash", hash)
	}
	kind := "unknown"
	if q != nil {
		body := q.QueryBody()
		kind = string(body.Kind)
		attrs = append(attrs, "dataset", body.Dataset, "kind", body.Kind)
	}
	attrs = append(attrs, "duration", elapsed)

	class := Classify(err)
	metrics.QueriesTotal.WithLabelValues(kind, class.Outcome()).Inc()
	metrics.QueryDuration.Observe(elapsed.Seconds())

	if err != nil {
		attrs = append(attrs, "class", class.String(), "error", err)
		if class == ClassTooLarge {
			attrs = append(attrs, "max_results", f.engine.MaxResults())
		}
		if class == ClassInternal {
			f.logger.Error("query failed", attrs...)
		} else {
			f.logger.Info("query rejected", attrs...)
		}
		return nil, err
	}

	metrics.QueryRows.Observe(float64(len(rows)))
	attrs = append(attrs, "rows", len(rows))
	f.logger.Info("query completed", attrs...)
	return rows, nil
}
