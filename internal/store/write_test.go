package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/testutil"
)

func TestAddDataset(t *testing.T) {
	s := createTestStore(t)
	records := testutil.Sections(3)

	info, err := s.AddDataset(t.Context(), "courses", ir.KindSections, records)
	require.NoError(t, err)

	assert.Equal(t, "courses", info.ID)
	assert.Equal(t, ir.KindSections, info.Kind)
	assert.Equal(t, 3, info.NumRows)

	wantHash, err := ir.DatasetHash(ir.KindSections, records)
	require.NoError(t, err)
	assert.Equal(t, wantHash, info.ContentHash)

	assert.Equal(t, 3, countRows(t, s.db, "SELECT COUNT(*) FROM records WHERE dataset_id = ?", "courses"))
}

func TestAddDataset_Empty(t *testing.T) {
	s := createTestStore(t)

	info, err := s.AddDataset(t.Context(), "empty", ir.KindRooms, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, info.NumRows)

	records, err := s.Records(t.Context(), "empty", ir.KindRooms)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAddDataset_Duplicate(t *testing.T) {
	s := createTestStore(t)
	addTestDataset(t, s, "courses", 2)

	_, err := s.AddDataset(t.Context(), "courses", ir.KindRooms, testutil.Rooms(1))
	require.ErrorIs(t, err, ErrDuplicate)

	info, err := s.Dataset(t.Context(), "courses")
	require.NoError(t, err)
	assert.Equal(t, ir.KindSections, info.Kind, "original dataset must be untouched")
}

func TestAddDataset_InvalidID(t *testing.T) {
	s := createTestStore(t)

	for _, id := range []string{"", " ", "\t\n", "my_courses", "_"} {
		_, err := s.AddDataset(t.Context(), id, ir.KindSections, testutil.Sections(1))
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}

	infos, err := s.ListDatasets(t.Context())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestAddDataset_InvalidKind(t *testing.T) {
	s := createTestStore(t)

	_, err := s.AddDataset(t.Context(), "courses", ir.Kind("courses"), nil)
	assert.ErrorIs(t, err, ir.ErrInvalidKind)
}

func TestRemoveDataset(t *testing.T) {
	s := createTestStore(t)
	addTestDataset(t, s, "courses", 4)

	require.NoError(t, s.RemoveDataset(t.Context(), "courses"))

	_, err := s.Dataset(t.Context(), "courses")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, countRows(t, s.db, "SELECT COUNT(*) FROM records"), "records should cascade")
	assert.Equal(t, 0, s.CachedDatasets())
}

func TestRemoveDataset_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.RemoveDataset(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveDataset_InvalidID(t *testing.T) {
	s := createTestStore(t)

	assert.ErrorIs(t, s.RemoveDataset(t.Context(), "a_b"), ErrInvalidID)
	assert.ErrorIs(t, s.RemoveDataset(t.Context(), "  "), ErrInvalidID)
}

func TestRemoveThenAddSameID(t *testing.T) {
	s := createTestStore(t)
	addTestDataset(t, s, "courses", 2)
	require.NoError(t, s.RemoveDataset(t.Context(), "courses"))

	rooms := testutil.Rooms(5)
	_, err := s.AddDataset(t.Context(), "courses", ir.KindRooms, rooms)
	require.NoError(t, err)

	got, err := s.Records(t.Context(), "courses", ir.KindRooms)
	require.NoError(t, err)
	assert.Equal(t, rooms, got)
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"courses", true},
		{"a b", true},
		{"x", true},
		{"", false},
		{"   ", false},
		{"with_underscore", false},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id)
		if tt.valid {
			assert.NoError(t, err, "id %q", tt.id)
		} else {
			assert.ErrorIs(t, err, ErrInvalidID, "id %q", tt.id)
		}
	}
}

func TestAddDataset_CacheDoesNotAliasCaller(t *testing.T) {
	s := createTestStore(t)
	records := []ir.Record{
		testutil.Section(map[string]any{"dept": "cpsc", "title": "cafe\u0301"}),
	}

	_, err := s.AddDataset(t.Context(), "courses", ir.KindSections, records)
	require.NoError(t, err)

	records[0]["dept"] = ir.String("math")

	cached, err := s.Records(t.Context(), "courses", ir.KindSections)
	require.NoError(t, err)
	assert.Equal(t, ir.String("cpsc"), cached[0]["dept"])

	s.evictCached("courses")
	fromDisk, err := s.Records(t.Context(), "courses", ir.KindSections)
	require.NoError(t, err)
	assert.Equal(t, fromDisk, cached, "cache must hold the stored form")
	assert.Equal(t, ir.String("caf\u00e9"), cached[0]["title"])
}
