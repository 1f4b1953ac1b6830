package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// addTestDataset adds n generated section records under id.
func addTestDataset(t *testing.T, s *Store, id string, n int) []ir.Record {
	t.Helper()
	records := testutil.Sections(n)
	if _, err := s.AddDataset(t.Context(), id, ir.KindSections, records); err != nil {
		t.Fatalf("AddDataset(%q) failed: %v", id, err)
	}
	return records
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info(%s) failed: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}
