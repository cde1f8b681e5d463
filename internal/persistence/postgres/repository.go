// Package postgres provides Postgres-backed persistence for activity records,
// the point ledger, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/events"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/observability"
)

const recordColumns = `athlete_id, activity_id, athlete_name, activity_type, activity_name, location, link,
        date_time, moving_time_seconds, elapsed_time_seconds, duration_seconds, calories, distance, elevation, pace, updated_at`

// RecordRepository stores scraped activity records partitioned by ISO week.
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository constructs a RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// FindByActivity returns the stored record for (athlete, activity), or nil.
func (r *RecordRepository) FindByActivity(ctx context.Context, clubID string, athleteID, activityID int64) (*domain.ActivityRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM activity_records
        WHERE club_id=$1 AND athlete_id=$2 AND activity_id=$3`

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

	record, err := scanRecord(tx.QueryRow(ctx, query, clubID, athleteID, activityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// Create persists the record and queues the recorded event inside a single transaction.
func (r *RecordRepository) Create(ctx context.Context, clubID string, record domain.ActivityRecord) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.club_id', $1, true)", clubID); err != nil {
		return err
	}

	insertRecord := `INSERT INTO activity_records (club_id, athlete_id, activity_id, athlete_name, activity_type, activity_name, location, link,
            date_time, week, moving_time_seconds, elapsed_time_seconds, duration_seconds, calories, distance, elevation, pace, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	_, err = tx.Exec(ctx, insertRecord,
		clubID,
		record.AthleteID,
		record.ActivityID,
		record.AthleteName,
		record.ActivityType,
		record.ActivityName,
		record.Location,
		record.Link,
		record.DateTime,
		nullIfEmpty(record.Week()),
		durationSeconds(record.MovingTime),
		durationSeconds(record.ElapsedTime),
		durationSeconds(record.Duration),
		record.Calories,
		record.Distance,
		record.Elevation,
		record.Pace,
		record.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, clubID, outboxEvent{
		eventType:   "activity.recorded",
		aggregate:   "activity",
		aggregateID: fmt.Sprintf("%d:%d", record.AthleteID, record.ActivityID),
	}, events.ActivityRecorded{
		ClubID:       clubID,
		AthleteID:    record.AthleteID,
		ActivityID:   record.ActivityID,
		ActivityType: record.ActivityType,
		Week:         record.Week(),
		DateTime:     record.DateTime,
		RecordedAt:   record.UpdatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(record.UpdatedAt)
	return nil
}

// ListByAthlete returns records for an athlete ordered by collection time.
func (r *RecordRepository) ListByAthlete(ctx context.Context, clubID string, athleteID int64, cursor *domain.Cursor, limit int) ([]domain.ActivityRecord, *domain.Cursor, error) {
	args := []interface{}{clubID, athleteID, limit}
	query := `SELECT ` + recordColumns + ` FROM activity_records
        WHERE club_id=$1 AND athlete_id=$2`

	if cursor != nil {
		query += ` AND (updated_at, activity_id) < ($4, $5)`
		args = append(args, cursor.UpdatedAt, cursor.ActivityID)
	}

	query += ` ORDER BY updated_at DESC, activity_id DESC LIMIT $3`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.club_id', $1, true)", clubID); err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.ActivityRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{UpdatedAt: last.UpdatedAt, ActivityID: last.ActivityID}
	}

	return results, nextCursor, nil
}

// Snapshot loads every record of the club across all weekly partitions, in a
// fixed order so scoring input is reproducible run to run.
func (r *RecordRepository) Snapshot(ctx context.Context, clubID string) ([]domain.ActivityRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM activity_records
        WHERE club_id=$1
        ORDER BY week NULLS FIRST, athlete_id, activity_id`

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

	results := make([]domain.ActivityRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// Clubs lists every club with at least one stored record.
func (r *RecordRepository) Clubs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT club_id FROM activity_records ORDER BY club_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]string, 0)
	for rows.Next() {
		var club string
		if err := rows.Scan(&club); err != nil {
			return nil, err
		}
		clubs = append(clubs, club)
	}
	return clubs, rows.Err()
}

func scanRecord(row pgx.Row) (*domain.ActivityRecord, error) {
	var record domain.ActivityRecord
	var moving, elapsed, duration *int64
	if err := row.Scan(
		&record.AthleteID,
		&record.ActivityID,
		&record.AthleteName,
		&record.ActivityType,
		&record.ActivityName,
		&record.Location,
		&record.Link,
		&record.DateTime,
		&moving,
		&elapsed,
		&duration,
		&record.Calories,
		&record.Distance,
		&record.Elevation,
		&record.Pace,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	record.MovingTime = secondsDuration(moving)
	record.ElapsedTime = secondsDuration(elapsed)
	record.Duration = secondsDuration(duration)
	return &record, nil
}

func durationSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	seconds := int64(d.Seconds())
	return &seconds
}

func secondsDuration(seconds *int64) *time.Duration {
	if seconds == nil {
		return nil
	}
	d := time.Duration(*seconds) * time.Second
	return &d
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

type outboxEvent struct {
	eventType   string
	aggregate   string
	aggregateID string
}

func insertOutbox(ctx context.Context, tx pgx.Tx, clubID string, event outboxEvent, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[event.eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", event.eventType)
	}

	partitionKey := meta.PartitionKeyFn(clubID, event.aggregateID)
	dedupeKey := fmt.Sprintf("%s:%s", event.aggregateID, event.eventType)

	const stmt = `INSERT INTO outbox (club_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		clubID,
		event.aggregate,
		event.aggregateID,
		event.eventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(clubID, aggregateID string) string
}

var eventCatalog = map[string]EventMetadata{
	"activity.recorded": {
		Topic:         "club_activity_events",
		SchemaSubject: "club_activity_events-value",
		PartitionKeyFn: func(clubID, aggregateID string) string {
			return fmt.Sprintf("%s:%s", clubID, aggregateID)
		},
	},
	"score.computed": {
		Topic:         "club_score_events",
		SchemaSubject: "club_score_events-value",
		PartitionKeyFn: func(clubID, aggregateID string) string {
			return clubID
		},
	},
}
