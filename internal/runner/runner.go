// Package runner orchestrates full ledger recomputes.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/scoring"
)

// SnapshotSource loads the complete activity history of a club.
type SnapshotSource interface {
	Snapshot(ctx context.Context, clubID string) ([]domain.ActivityRecord, error)
}

// LedgerSink atomically replaces a club's ledger.
type LedgerSink interface {
	Replace(ctx context.Context, run domain.ScoreRun, entries []domain.PointEntry) error
}

// Runner recomputes the full point ledger from the full activity history.
// Scoring is never incremental: each run rebuilds everything from scratch, so
// a re-run over unchanged data always lands on the same ledger.
type Runner struct {
	source SnapshotSource
	sink   LedgerSink
	scorer *scoring.Scorer
	logger *log.Logger
}

// New constructs a Runner with the provided scoring configuration.
func New(source SnapshotSource, sink LedgerSink, cfg scoring.Config) (*Runner, error) {
	scorer, err := scoring.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	return &Runner{
		source: source,
		sink:   sink,
		scorer: scorer,
		logger: log.New(log.Writer(), "[runner] ", log.LstdFlags),
	}, nil
}

// Run executes one scoring run for the club. Any failure is logged and the
// ledger write is skipped entirely for that run: a partial ledger is worse
// than no ledger.
func (r *Runner) Run(ctx context.Context, clubID string) (domain.ScoreRun, error) {
	start := time.Now()

	records, err := r.source.Snapshot(ctx, clubID)
	if err != nil {
		return r.fail(clubID, fmt.Errorf("load snapshot: %w", err))
	}

	entries := r.scorer.Score(records)

	run := domain.ScoreRun{
		RunID:       uuid.NewString(),
		ClubID:      clubID,
		Records:     len(records),
		Entries:     len(entries),
		TotalPoints: scoring.Total(entries),
		ComputedAt:  time.Now().UTC(),
	}

	if err := r.sink.Replace(ctx, run, entries); err != nil {
		return r.fail(clubID, fmt.Errorf("replace ledger: %w", err))
	}

	runDuration.Observe(time.Since(start).Seconds())
	lastRunEntries.Set(float64(run.Entries))
	r.logger.Printf("scored club %s: %d records -> %d entries (%.1f points, run=%s)",
		clubID, run.Records, run.Entries, run.TotalPoints, run.RunID)
	return run, nil
}

func (r *Runner) fail(clubID string, err error) (domain.ScoreRun, error) {
	runsFailed.Inc()
	r.logger.Printf("scoring run skipped for club %s: %v", clubID, err)
	return domain.ScoreRun{}, err
}
