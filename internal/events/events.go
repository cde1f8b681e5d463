// Package events defines the payloads published through the outbox.
package events

import "time"

// ActivityRecorded is emitted when a scraped activity is accepted into the store.
type ActivityRecorded struct {
	ClubID       string     `json:"club_id"`
	AthleteID    int64      `json:"athlete_id"`
	ActivityID   int64      `json:"activity_id"`
	ActivityType string     `json:"activity_type,omitempty"`
	Week         string     `json:"week,omitempty"`
	DateTime     *time.Time `json:"date_time,omitempty"`
	RecordedAt   time.Time  `json:"recorded_at"`
}

// ScoreComputed is emitted after a scoring run fully replaced the club ledger.
type ScoreComputed struct {
	ClubID      string    `json:"club_id"`
	RunID       string    `json:"run_id"`
	Records     int       `json:"records"`
	Entries     int       `json:"entries"`
	TotalPoints float64   `json:"total_points"`
	ComputedAt  time.Time `json:"computed_at"`
}
