package scoring

import (
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/calendar"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
)

// eventPoints awards a flat bonus for every activity on a configured bonus
// date, independent of duration or frequency. Several activities by the same
// athlete on the same bonus date each earn the bonus: extra effort on event
// days is meant to pay off.
func eventPoints(records []domain.ActivityRecord, valuePerEvent float64, dates []string) []domain.PointEntry {
	bonusDates := make(map[string]struct{}, len(dates))
	for _, date := range dates {
		bonusDates[date] = struct{}{}
	}

	entries := make([]domain.PointEntry, 0)
	for _, record := range records {
		date := record.Date()
		if date == "" {
			continue
		}
		if _, ok := bonusDates[date]; !ok {
			continue
		}

		entries = append(entries, domain.PointEntry{
			AthleteID:    record.AthleteID,
			DateTime:     calendar.Midnight(*record.DateTime),
			RaisedPoints: "Evento bônus no dia " + date,
			Points:       valuePerEvent,
		})
	}

	return entries
}
