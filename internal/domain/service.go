// Package domain defines the business logic for the club points service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/calendar"
)

var (
	// ErrIdempotentReplay indicates an already-scraped activity was submitted again.
	ErrIdempotentReplay = errors.New("activity record already exists")
	// ErrRecordNotFound is returned when an activity record cannot be located.
	ErrRecordNotFound = errors.New("activity record not found")
)

// Scraper fallbacks for fields it attempted but could not resolve. The scoring
// engine treats both the same as never-attempted, so they are normalized to
// absent at this boundary.
var sentinelValues = map[string]struct{}{
	"Unnamed":   {},
	"Not Found": {},
}

// RecordRepository captures persistence operations for activity records.
type RecordRepository interface {
	FindByActivity(ctx context.Context, clubID string, athleteID, activityID int64) (*ActivityRecord, error)
	Create(ctx context.Context, clubID string, record ActivityRecord) error
	ListByAthlete(ctx context.Context, clubID string, athleteID int64, cursor *Cursor, limit int) ([]ActivityRecord, *Cursor, error)
	Snapshot(ctx context.Context, clubID string) ([]ActivityRecord, error)
}

// LedgerRepository captures persistence operations for the point ledger.
type LedgerRepository interface {
	Replace(ctx context.Context, run ScoreRun, entries []PointEntry) error
	ListByAthlete(ctx context.Context, clubID string, athleteID int64) ([]PointEntry, error)
	Leaderboard(ctx context.Context, clubID string) ([]LeaderboardRow, error)
}

// Cursor models the pagination token for record listings.
type Cursor struct {
	UpdatedAt  time.Time
	ActivityID int64
}

// Service orchestrates record ingestion and ledger reads.
type Service struct {
	records RecordRepository
	ledger  LedgerRepository
}

// NewService constructs a Service.
func NewService(records RecordRepository, ledger LedgerRepository) *Service {
	return &Service{records: records, ledger: ledger}
}

// RecordActivityInput carries one scraped activity as collected, with duration
// and timestamp fields still in their page string form.
type RecordActivityInput struct {
	ClubID       string
	AthleteID    int64
	ActivityID   int64
	AthleteName  string
	ActivityType string
	ActivityName string
	Location     string
	Link         string
	DateTime     string
	MovingTime   string
	ElapsedTime  string
	Duration     string
	Calories     string
	Distance     string
	Elevation    string
	Pace         string
}

// RecordActivity normalizes and stores one scraped activity. Replays of an
// already-stored (athlete, activity) pair return the stored record unchanged.
// Malformed duration or timestamp strings fail hard: they wrap
// calendar.ErrMalformedDuration / calendar.ErrMalformedTimestamp rather than
// being silently zeroed.
func (s *Service) RecordActivity(ctx context.Context, input RecordActivityInput) (*ActivityRecord, bool, error) {
	if existing, err := s.records.FindByActivity(ctx, input.ClubID, input.AthleteID, input.ActivityID); err == nil && existing != nil {
		return existing, true, nil
	}

	record, err := input.normalize()
	if err != nil {
		return nil, false, err
	}

	if err := s.records.Create(ctx, input.ClubID, record); err != nil {
		return nil, false, err
	}
	return &record, false, nil
}

func (input RecordActivityInput) normalize() (ActivityRecord, error) {
	record := ActivityRecord{
		AthleteID:    input.AthleteID,
		ActivityID:   input.ActivityID,
		AthleteName:  unsentinel(input.AthleteName),
		ActivityType: unsentinel(input.ActivityType),
		ActivityName: unsentinel(input.ActivityName),
		Location:     unsentinel(input.Location),
		Link:         unsentinel(input.Link),
		Pace:         unsentinel(input.Pace),
		UpdatedAt:    time.Now().UTC(),
	}

	if raw := strings.TrimSpace(input.DateTime); raw != "" {
		parsed, err := calendar.ParseActivityTime(raw)
		if err != nil {
			return ActivityRecord{}, err
		}
		record.DateTime = &parsed
	}

	durations := []struct {
		raw  string
		dest **time.Duration
	}{
		{input.MovingTime, &record.MovingTime},
		{input.ElapsedTime, &record.ElapsedTime},
		{input.Duration, &record.Duration},
	}
	for _, field := range durations {
		raw := strings.TrimSpace(field.raw)
		if raw == "" {
			continue
		}
		parsed, err := calendar.ParseClock(raw)
		if err != nil {
			return ActivityRecord{}, err
		}
		value := parsed
		*field.dest = &value
	}

	floats := []struct {
		raw  string
		dest **float64
	}{
		{input.Calories, &record.Calories},
		{input.Distance, &record.Distance},
		{input.Elevation, &record.Elevation},
	}
	for _, field := range floats {
		raw := strings.TrimSpace(unsentinel(field.raw))
		if raw == "" {
			continue
		}
		// Numeric strings come with thousands separators on some pages.
		raw = strings.ReplaceAll(raw, ",", "")
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		*field.dest = &parsed
	}

	return record, nil
}

func unsentinel(value string) string {
	trimmed := strings.TrimSpace(value)
	if _, ok := sentinelValues[trimmed]; ok {
		return ""
	}
	return trimmed
}

// GetActivity fetches one record by its activity ID.
func (s *Service) GetActivity(ctx context.Context, clubID string, athleteID, activityID int64) (*ActivityRecord, error) {
	record, err := s.records.FindByActivity(ctx, clubID, athleteID, activityID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// ListActivitiesByAthlete fetches records with cursor pagination.
func (s *Service) ListActivitiesByAthlete(ctx context.Context, clubID string, athleteID int64, cursor *Cursor, limit int) ([]ActivityRecord, *Cursor, error) {
	return s.records.ListByAthlete(ctx, clubID, athleteID, cursor, limit)
}

// Snapshot loads the full activity history of the club, re-concatenating all
// weekly partitions into one immutable scoring input.
func (s *Service) Snapshot(ctx context.Context, clubID string) ([]ActivityRecord, error) {
	return s.records.Snapshot(ctx, clubID)
}

// PointsByAthlete returns the athlete's ledger rows.
func (s *Service) PointsByAthlete(ctx context.Context, clubID string, athleteID int64) ([]PointEntry, error) {
	return s.ledger.ListByAthlete(ctx, clubID, athleteID)
}

// Leaderboard returns per-athlete ledger totals, highest first.
func (s *Service) Leaderboard(ctx context.Context, clubID string) ([]LeaderboardRow, error) {
	rows, err := s.ledger.Leaderboard(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return rows, nil
}
