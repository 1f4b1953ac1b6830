package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/insight/internal/ir"
)

// DatasetInfo describes one catalog entry.
type DatasetInfo struct {
	ID          string  `json:"id"`
	Kind        ir.Kind `json:"kind"`
	NumRows     int     `json:"numRows"`
	ContentHash string  `json:"-"`
}

// ListDatasets returns every dataset in insertion order.
// The result is never nil.
func (s *Store) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, num_rows, content_hash
		FROM datasets
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	infos := []DatasetInfo{}
	for rows.Next() {
		var info DatasetInfo
		var kind string
		if err := rows.Scan(&info.ID, &kind, &info.NumRows, &info.ContentHash); err != nil {
			return nil, fmt.Errorf("list datasets: scan: %w", err)
		}
		info.Kind = ir.Kind(kind)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return infos, nil
}

// Dataset returns the catalog entry for id.
// Returns ErrNotFound if id is not in the catalog.
func (s *Store) Dataset(ctx context.Context, id string) (DatasetInfo, error) {
	var info DatasetInfo
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, num_rows, content_hash
		FROM datasets
		WHERE id = ?
	`, id).Scan(&info.ID, &kind, &info.NumRows, &info.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return DatasetInfo{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("read dataset: %w", err)
	}
	info.Kind = ir.Kind(kind)
	return info, nil
}

// Records loads the records of dataset id after checking that it was stored
// with the requested kind.
//
// Returns ErrNotFound for an unknown id and *KindMismatchError when the kinds
// differ. The returned slice may be shared with other callers.
func (s *Store) Records(ctx context.Context, id string, kind ir.Kind) ([]ir.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	if info.Kind != kind {
		return nil, &KindMismatchError{ID: id, Stored: info.Kind, Requested: kind}
	}

	if cached, ok := s.cachedRecords(id); ok {
		return cached, nil
	}

	records, err := s.readRecords(ctx, id, info.NumRows)
	if err != nil {
		return nil, err
	}
	s.storeCached(id, records)
	return records, nil
}

func (s *Store) readRecords(ctx context.Context, id string, n int) ([]ir.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body
		FROM records
		WHERE dataset_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	records := make([]ir.Record, 0, n)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("read records: scan: %w", err)
		}
		rec, err := unmarshalRecord(body)
		if err != nil {
			return nil, fmt.Errorf("read records: row %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}
