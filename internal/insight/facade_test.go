package insight

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/store"
	"github.com/roach88/insight/internal/testutil"
)

func newTestFacade(t *testing.T, opts ...FacadeOption) (*Facade, *bytes.Buffer) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]FacadeOption{
		WithLogger(logger),
		WithIDGenerator(testutil.NewFixedIDGenerator("query-1")),
	}, opts...)
	return NewFacade(st, opts...), &logs
}

// logLines decodes every JSON log line written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestFacade_DatasetLifecycle(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := t.Context()

	ids, err := f.AddDataset(ctx, "courses", ir.KindSections, testutil.Sections(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"courses"}, ids)

	ids, err = f.AddDataset(ctx, "rooms", ir.KindRooms, testutil.Rooms(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"courses", "rooms"}, ids)

	_, err = f.AddDataset(ctx, "rooms", ir.KindRooms, testutil.Rooms(1))
	assert.ErrorIs(t, err, store.ErrDuplicate)

	infos, err := f.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, store.DatasetInfo{ID: "rooms", Kind: ir.KindRooms, NumRows: 2, ContentHash: infos[1].ContentHash}, infos[1])

	removed, err := f.RemoveDataset(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, "courses", removed)

	_, err = f.RemoveDataset(ctx, "courses")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, ClassNotFound, Classify(err))
}

func TestFacade_PerformQuery(t *testing.T) {
	f, logs := newTestFacade(t)
	ctx := t.Context()

	_, err := f.AddDataset(ctx, "rooms", ir.KindRooms, []ir.Record{
		testutil.Room(map[string]any{"name": "DMP_110", "seats": 120}),
		testutil.Room(map[string]any{"name": "DMP_201", "seats": 40}),
		testutil.Room(map[string]any{"name": "WOOD_2", "seats": 500}),
	})
	require.NoError(t, err)
	logs.Reset()

	rows, err := f.PerformQuery(ctx, rawQuery(t, `{
		"WHERE": {"IS": {"rooms_name": "DMP*"}},
		"OPTIONS": {"COLUMNS": ["rooms_name", "rooms_seats"], "ORDER": {"dir": "DOWN", "keys": ["rooms_seats"]}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []ir.Record{
		{"rooms_name": ir.String("DMP_110"), "rooms_seats": ir.Number(120)},
		{"rooms_name": ir.String("DMP_201"), "rooms_seats": ir.Number(40)},
	}, rows)

	lines := logLines(t, logs)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "query completed", entry["msg"])
	assert.Equal(t, "query-1", entry["query_id"])
	assert.Equal(t, "rooms", entry["dataset"])
	assert.Equal(t, "rooms", entry["kind"])
	assert.Equal(t, float64(2), entry["rows"])
	assert.NotEmpty(t, entry["query_hash"])
}

func TestFacade_PerformQueryUsesEngineOptions(t *testing.T) {
	f, logs := newTestFacade(t, WithEngineOptions(engine.WithMaxResults(1)))
	ctx := t.Context()

	_, err := f.AddDataset(ctx, "rooms", ir.KindRooms, testutil.Rooms(2))
	require.NoError(t, err)
	logs.Reset()

	_, err = f.PerformQuery(ctx, rawQuery(t, `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["rooms_name"]}}`))
	require.Error(t, err)
	assert.True(t, engine.IsResultTooLarge(err))

	lines := logLines(t, logs)
	require.Len(t, lines, 1)
	assert.Equal(t, "query rejected", lines[0]["msg"])
	assert.Equal(t, "too_large", lines[0]["class"])
	assert.Equal(t, float64(1), lines[0]["max_results"])
}

func TestFacade_PerformQueryMissingDataset(t *testing.T) {
	f, _ := newTestFacade(t)

	_, err := f.PerformQuery(t.Context(), rawQuery(t, `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["nope_avg"]}}`))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFacade_PerformQueryKindMismatch(t *testing.T) {
	f, _ := newTestFacade(t)
	_, err := f.AddDataset(t.Context(), "campus", ir.KindRooms, testutil.Rooms(1))
	require.NoError(t, err)

	_, err = f.PerformQuery(t.Context(), rawQuery(t, `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["campus_avg"]}}`))
	assert.True(t, store.IsKindMismatch(err))
	assert.Equal(t, ClassInvalid, Classify(err))
}

func TestFacade_PerformQueryInvalidLogsWithoutDataset(t *testing.T) {
	f, logs := newTestFacade(t)

	_, err := f.PerformQuery(t.Context(), "not a query")
	require.Error(t, err)

	lines := logLines(t, logs)
	require.Len(t, lines, 1)
	assert.Equal(t, "invalid", lines[0]["class"])
	assert.NotContains(t, lines[0], "dataset")
}

func TestFacade_PerformQueryMatchesAcrossNormalForms(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := t.Context()

	_, err := f.AddDataset(ctx, "courses", ir.KindSections, []ir.Record{
		testutil.Section(map[string]any{"title": "caf\u00e9 culture"}),
		testutil.Section(map[string]any{"title": "tea"}),
	})
	require.NoError(t, err)

	rows, err := f.PerformQuery(ctx, rawQuery(t, `{
		"WHERE": {"IS": {"courses_title": "cafe\u0301*"}},
		"OPTIONS": {"COLUMNS": ["courses_title"]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []ir.Record{{"courses_title": ir.String("caf\u00e9 culture")}}, rows)
}
