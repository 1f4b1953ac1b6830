package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/insight/internal/ir"
)

// AddDataset stores records under id in a single transaction.
//
// The id is validated with ValidateID and must not already exist. Records are
// written in order and each one is stored as canonical JSON. On success the
// decoded stored form is placed in the read cache, so the cache never aliases
// the caller's records and matches what a later read from disk returns.
func (s *Store) AddDataset(ctx context.Context, id string, kind ir.Kind, records []ir.Record) (DatasetInfo, error) {
	if err := ValidateID(id); err != nil {
		return DatasetInfo{}, err
	}
	if _, err := ir.ParseKind(string(kind)); err != nil {
		return DatasetInfo{}, err
	}

	hash, err := ir.DatasetHash(kind, records)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("add dataset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("add dataset: begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM datasets WHERE id = ?`, id).Scan(&existing)
	switch {
	case err == nil:
		return DatasetInfo{}, fmt.Errorf("%w: %q", ErrDuplicate, id)
	case !errors.Is(err, sql.ErrNoRows):
		return DatasetInfo{}, fmt.Errorf("add dataset: lookup: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO datasets
		(id, kind, num_rows, content_hash, engine_version, record_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		id,
		string(kind),
		len(records),
		hash,
		ir.EngineVersion,
		ir.RecordVersion,
	)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("add dataset: insert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (dataset_id, idx, body) VALUES (?, ?, ?)`)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("add dataset: prepare: %w", err)
	}
	defer stmt.Close()

	stored := make([]ir.Record, len(records))
	for i, rec := range records {
		body, err := marshalRecord(rec)
		if err != nil {
			return DatasetInfo{}, fmt.Errorf("add dataset: record %d: %w", i, err)
		}
		if stored[i], err = unmarshalRecord(body); err != nil {
			return DatasetInfo{}, fmt.Errorf("add dataset: record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, body); err != nil {
			return DatasetInfo{}, fmt.Errorf("add dataset: insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return DatasetInfo{}, fmt.Errorf("add dataset: commit: %w", err)
	}

	s.storeCached(id, stored)
	return DatasetInfo{ID: id, Kind: kind, NumRows: len(records), ContentHash: hash}, nil
}

// RemoveDataset deletes a dataset and its records.
// Returns ErrNotFound if id is not in the catalog.
func (s *Store) RemoveDataset(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove dataset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove dataset: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	s.evictCached(id)
	return nil
}
