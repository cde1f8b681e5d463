package domain

import (
	"time"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/calendar"
)

// ActivityRecord is one scraped activity observation for one athlete. Optional
// fields are nil (or empty for strings) when the scraper could not resolve
// them; the scoring engine tolerates any combination of absent fields.
type ActivityRecord struct {
	AthleteID  int64
	ActivityID int64

	AthleteName  string
	ActivityType string
	ActivityName string
	Location     string
	Link         string

	DateTime *time.Time

	MovingTime  *time.Duration
	ElapsedTime *time.Duration
	Duration    *time.Duration

	Calories  *float64
	Distance  *float64
	Elevation *float64
	Pace      string

	UpdatedAt time.Time
}

// Week returns the ISO-week bucket of the record, or "" when the record has no
// resolvable date and therefore cannot be assigned a week.
func (r ActivityRecord) Week() string {
	if r.DateTime == nil {
		return ""
	}
	return calendar.WeekKey(*r.DateTime)
}

// Date returns the calendar date key of the record, or "" without a date.
func (r ActivityRecord) Date() string {
	if r.DateTime == nil {
		return ""
	}
	return calendar.DateKey(*r.DateTime)
}
