package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/scoring"
)

func TestRunReplacesLedger(t *testing.T) {
	at := time.Date(2022, time.November, 15, 18, 0, 0, 0, time.UTC)
	moving := 30 * time.Minute

	source := &stubSource{records: []domain.ActivityRecord{
		{AthleteID: 1, ActivityID: 10, DateTime: &at, MovingTime: &moving, Link: "https://www.strava.com/activities/10"},
	}}
	sink := &stubSink{}

	r, err := New(source, sink, scoring.Config{EventDates: []string{"2022-11-30"}})
	require.NoError(t, err)

	run, err := r.Run(context.Background(), "club-1")
	require.NoError(t, err)

	require.Equal(t, "club-1", run.ClubID)
	require.NotEmpty(t, run.RunID)
	require.Equal(t, 1, run.Records)
	// Duration entry plus the (zero bonus) frequency entry.
	require.Equal(t, 2, run.Entries)
	require.Equal(t, 30.0, run.TotalPoints)

	require.Equal(t, 1, sink.calls)
	require.Len(t, sink.entries, 2)
	require.Equal(t, run.RunID, sink.run.RunID)
}

func TestRunSkipsWriteWhenSnapshotFails(t *testing.T) {
	source := &stubSource{err: errors.New("postgres down")}
	sink := &stubSink{}

	r, err := New(source, sink, scoring.Config{})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "club-1")
	require.Error(t, err)
	require.Zero(t, sink.calls, "failed run must not touch the ledger")
}

func TestRunPropagatesSinkFailure(t *testing.T) {
	source := &stubSource{}
	sink := &stubSink{err: errors.New("tx aborted")}

	r, err := New(source, sink, scoring.Config{})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "club-1")
	require.ErrorContains(t, err, "replace ledger")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(&stubSource{}, &stubSink{}, scoring.Config{ValuePerMinute: -1})
	require.Error(t, err)
}

type stubSource struct {
	records []domain.ActivityRecord
	err     error
}

func (s *stubSource) Snapshot(ctx context.Context, clubID string) ([]domain.ActivityRecord, error) {
	return s.records, s.err
}

type stubSink struct {
	calls   int
	run     domain.ScoreRun
	entries []domain.PointEntry
	err     error
}

func (s *stubSink) Replace(ctx context.Context, run domain.ScoreRun, entries []domain.PointEntry) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.run = run
	s.entries = entries
	return nil
}
