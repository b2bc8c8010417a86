package usage

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	apperrors "lettercraft/internal/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		kind  Kind
		units int
		want  float64
	}{
		{KindLetterGeneration, 1000, 0.002},
		{KindLetterGeneration, 350, 0.0007},
		{KindLetterImprovement, 2000, 0.002},
		{KindLetterAnalysis, 4000, 0.002},
		{Kind("unknown"), 1000, DefaultRate},
		{KindLetterGeneration, 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCost(tt.kind, tt.units), 1e-12)
		})
	}
}

type recordingTracker struct {
	records []Record
	err     error
}

func (r *recordingTracker) Record(_ context.Context, rec Record) error {
	r.records = append(r.records, rec)
	return r.err
}

func TestMultiTracker(t *testing.T) {
	ok := &recordingTracker{}
	failing := &recordingTracker{err: errors.New("db down")}

	m := MultiTracker{failing, ok}
	err := m.Record(context.Background(), Record{UserID: "u1", Kind: KindLetterAnalysis, Units: 10})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Len(t, ok.records, 1, "later trackers still receive the record")
	assert.Len(t, failing.records, 1)
}

func TestLogAndNopTrackers(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NewLogTracker(apperrors.NewLogger(slog.LevelError)).Record(ctx, Record{Kind: KindLetterGeneration}))
	assert.NoError(t, NewLogTracker(nil).Record(ctx, Record{}))
	assert.NoError(t, NopTracker{}.Record(ctx, Record{}))
}

type fakeExec struct {
	sql  []string
	args [][]any
	err  error
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestPostgresTrackerRecord(t *testing.T) {
	db := &fakeExec{}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := &PostgresTracker{db: db, now: func() time.Time { return fixed }}

	err := tracker.Record(context.Background(), Record{UserID: "user-42", Kind: KindLetterGeneration, Units: 500})
	require.NoError(t, err)

	require.Len(t, db.args, 1)
	args := db.args[0]
	require.Len(t, args, 6)
	_, isUUID := args[0].(uuid.UUID)
	assert.True(t, isUUID)
	assert.Equal(t, "user-42", args[1])
	assert.Equal(t, "letter_generation", args[2])
	assert.Equal(t, 500, args[3])
	assert.InDelta(t, 0.001, args[4].(float64), 1e-12)
	assert.Equal(t, fixed, args[5])
}

func TestPostgresTrackerRecordError(t *testing.T) {
	tracker := &PostgresTracker{db: &fakeExec{err: errors.New("connection reset")}, now: time.Now}

	err := tracker.Record(context.Background(), Record{UserID: "u", Kind: KindLetterImprovement, Units: 1})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUsageRecord))
}

func TestPostgresTrackerEnsureSchema(t *testing.T) {
	db := &fakeExec{}
	tracker := &PostgresTracker{db: db, now: time.Now}

	require.NoError(t, tracker.EnsureSchema(context.Background()))
	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS ai_usage")
}

func TestNewTrackerWithoutDatabase(t *testing.T) {
	tracker, closeFn, err := NewTracker(context.Background(), "", true, nil)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	_, isLog := tracker.(*LogTracker)
	assert.True(t, isLog)
	closeFn()
}
