package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/events"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/observability"
)

// LedgerRepository persists point entries. Every scoring run replaces the
// club's whole ledger in one transaction; a failed run leaves the previous
// ledger untouched.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository constructs a LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Replace swaps the club ledger for the run's entries and queues the
// score.computed event, all-or-nothing.
func (r *LedgerRepository) Replace(ctx context.Context, run domain.ScoreRun, entries []domain.PointEntry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.club_id', $1, true)", run.ClubID); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM point_entries WHERE club_id=$1`, run.ClubID); err != nil {
		return err
	}

	const insertEntry = `INSERT INTO point_entries (club_id, run_id, position, athlete_id, date_time, raised_points, points)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for position, entry := range entries {
		if _, err = tx.Exec(ctx, insertEntry,
			run.ClubID,
			run.RunID,
			position,
			entry.AthleteID,
			entry.DateTime,
			entry.RaisedPoints,
			entry.Points,
		); err != nil {
			return err
		}
	}

	const insertRun = `INSERT INTO score_runs (run_id, club_id, records, entries, total_points, computed_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err = tx.Exec(ctx, insertRun,
		run.RunID,
		run.ClubID,
		run.Records,
		run.Entries,
		run.TotalPoints,
		run.ComputedAt,
	); err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, run.ClubID, outboxEvent{
		eventType:   "score.computed",
		aggregate:   "score_run",
		aggregateID: run.RunID,
	}, events.ScoreComputed{
		ClubID:      run.ClubID,
		RunID:       run.RunID,
		Records:     run.Records,
		Entries:     run.Entries,
		TotalPoints: run.TotalPoints,
		ComputedAt:  run.ComputedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordLedgerReplaced(run.ComputedAt)
	return nil
}

// ListByAthlete returns the athlete's ledger rows in ledger order.
func (r *LedgerRepository) ListByAthlete(ctx context.Context, clubID string, athleteID int64) ([]domain.PointEntry, error) {
	const query = `SELECT athlete_id, date_time, raised_points, points
        FROM point_entries WHERE club_id=$1 AND athlete_id=$2 ORDER BY position`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.club_id', $1, true)", clubID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, clubID, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.PointEntry, 0)
	for rows.Next() {
		var entry domain.PointEntry
		if err := rows.Scan(&entry.AthleteID, &entry.DateTime, &entry.RaisedPoints, &entry.Points); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entries, nil
}

// Leaderboard sums the ledger per athlete, highest total first. Athlete names
// come from the latest record that still carries one.
func (r *LedgerRepository) Leaderboard(ctx context.Context, clubID string) ([]domain.LeaderboardRow, error) {
	const query = `SELECT e.athlete_id,
               COALESCE((SELECT ar.athlete_name FROM activity_records ar
                          WHERE ar.club_id = e.club_id AND ar.athlete_id = e.athlete_id AND ar.athlete_name <> ''
                          ORDER BY ar.updated_at DESC LIMIT 1), '') AS athlete_name,
               SUM(e.points) AS points,
               COUNT(*) AS entries
          FROM point_entries e
         WHERE e.club_id=$1
         GROUP BY e.club_id, e.athlete_id
         ORDER BY points DESC, e.athlete_id`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.club_id', $1, true)", clubID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	board := make([]domain.LeaderboardRow, 0)
	for rows.Next() {
		var row domain.LeaderboardRow
		if err := rows.Scan(&row.AthleteID, &row.AthleteName, &row.Points, &row.Entries); err != nil {
			return nil, err
		}
		board = append(board, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return board, nil
}
