package domain

import "time"

// PointEntry is one attributed point award in the ledger. Entries are additive
// and never merged: an athlete's total score is the sum over all their rows.
type PointEntry struct {
	AthleteID    int64
	DateTime     time.Time
	RaisedPoints string
	Points       float64
}

// LeaderboardRow aggregates one athlete's ledger for ranking.
type LeaderboardRow struct {
	AthleteID   int64
	AthleteName string
	Points      float64
	Entries     int
}

// ScoreRun summarises one full recompute of the ledger.
type ScoreRun struct {
	RunID       string
	ClubID      string
	Records     int
	Entries     int
	TotalPoints float64
	ComputedAt  time.Time
}
