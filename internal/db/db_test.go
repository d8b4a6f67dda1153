package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
)

func TestSQLitePath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"sqlite://./metrics.db", "./metrics.db"},
		{"sqlite:///./metrics.db", "./metrics.db"},
		{"sqlite:///var/lib/no-writer/metrics.db", "/var/lib/no-writer/metrics.db"},
		{"sqlite://:memory:", ":memory:"},
		{"sqlite::memory:", ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLitePath(tt.url))
		})
	}
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), "mysql://root@localhost/metrics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"mysql"`)
}

func TestEventArgs_ZeroValuesAreNull(t *testing.T) {
	args := eventArgs(metrics.Event{Type: metrics.EventUpload, FileSizeBytes: 2048})
	require.Len(t, args, 10)
	assert.Equal(t, "upload", args[0])
	assert.Nil(t, args[1])
	assert.Nil(t, args[3])
	assert.Equal(t, int64(2048), args[4])
}

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenSQLite_Migrates(t *testing.T) {
	store := openTestSQLite(t)

	version, err := GetUserVersion(store.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	var journalMode string
	require.NoError(t, store.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	// reopening an existing database is a no-op migration
	require.NoError(t, migrate(store.db))
}

func TestSQLite_RecordAndRead(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()
	ts := time.Date(2026, 2, 14, 16, 45, 30, 123_000_000, time.UTC)

	full := metrics.Event{
		ID:                metrics.NewID(ts),
		Timestamp:         ts,
		Type:              metrics.EventGeneration,
		OrganizationName:  "Astoria Cat Rescue",
		DeclineReason:     "higher_merit",
		ProcessingTimeMS:  1532.25,
		FileSizeBytes:     40960,
		ProposalWordCount: 1800,
		SessionID:         "session-1",
		LLMProvider:       "openai",
		LLMTokensUsed:     420,
	}
	sparse := metrics.Event{
		ID:           metrics.NewID(ts.Add(time.Minute)),
		Timestamp:    ts.Add(time.Minute),
		Type:         metrics.ErrorEvent(metrics.EventUpload),
		ErrorMessage: "unsupported file type",
	}
	old := metrics.Event{ID: metrics.NewID(ts.Add(-72 * time.Hour)), Timestamp: ts.Add(-72 * time.Hour), Type: metrics.EventUpload}

	for _, e := range []metrics.Event{full, sparse, old} {
		require.NoError(t, store.Record(ctx, e))
	}

	events, err := store.EventsSince(ctx, ts.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, full, events[0])
	assert.Equal(t, sparse, events[1])
}

func TestSQLite_DuplicateIDFails(t *testing.T) {
	store := openTestSQLite(t)
	e := metrics.Event{ID: "01HX", Timestamp: time.Now().UTC(), Type: metrics.EventUpload}
	require.NoError(t, store.Record(context.Background(), e))
	assert.Error(t, store.Record(context.Background(), e))
}

func TestOpen_SQLiteMemory(t *testing.T) {
	store, err := Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now := time.Now().UTC()
	require.NoError(t, store.Record(context.Background(), metrics.Event{ID: metrics.NewID(now), Timestamp: now, Type: metrics.EventAnalysis}))

	events, err := store.EventsSince(context.Background(), now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSQLite_WithAggregator(t *testing.T) {
	store := openTestSQLite(t)
	recorder := metrics.NewRecorder(store)
	ctx := context.Background()

	recorder.Record(ctx, metrics.Event{Type: metrics.EventUpload, SessionID: "a"})
	recorder.Record(ctx, metrics.Event{Type: metrics.EventGeneration, SessionID: "a", DeclineReason: "sustainability", ProcessingTimeMS: 800})

	summary, err := metrics.NewAggregator(store).Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalUploads)
	assert.Equal(t, 1, summary.TotalGenerations)
	assert.Equal(t, 1, summary.UniqueSessions)
	assert.Equal(t, []metrics.ReasonCount{{Reason: "sustainability", Count: 1}}, summary.TopDeclineReasons)
}
