package scoring

import (
	"time"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
)

// scoredRecord carries the duration points attached to a record so the
// frequency rule can build on them without re-deriving the base score.
type scoredRecord struct {
	record domain.ActivityRecord
	points float64
	scored bool
}

// bestDuration picks the first present duration field in preference order:
// moving time, then elapsed time, then the heading duration. This is a
// priority fallback, never an average.
func bestDuration(r domain.ActivityRecord) (time.Duration, bool) {
	for _, candidate := range []*time.Duration{r.MovingTime, r.ElapsedTime, r.Duration} {
		if candidate != nil {
			return *candidate, true
		}
	}
	return 0, false
}

// durationPoints credits valuePerMinute per whole activity minute. Fractional
// minutes are floored, never rounded. Records with every duration field absent
// are dropped rather than emitted as zero-point entries; a genuinely
// zero-length activity still yields its (zero point) entry.
func durationPoints(records []domain.ActivityRecord, valuePerMinute float64) ([]domain.PointEntry, []scoredRecord) {
	entries := make([]domain.PointEntry, 0, len(records))
	scored := make([]scoredRecord, 0, len(records))

	for _, record := range records {
		duration, ok := bestDuration(record)
		if !ok {
			scored = append(scored, scoredRecord{record: record})
			continue
		}

		minutes := int64(duration.Seconds()) / 60
		points := float64(minutes) * valuePerMinute

		var creditedAt time.Time
		if record.DateTime != nil {
			creditedAt = *record.DateTime
		}

		entries = append(entries, domain.PointEntry{
			AthleteID:    record.AthleteID,
			DateTime:     creditedAt,
			RaisedPoints: "Atividade " + record.Link,
			Points:       points,
		})
		scored = append(scored, scoredRecord{record: record, points: points, scored: true})
	}

	return entries, scored
}
