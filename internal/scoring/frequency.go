package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/calendar"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
)

type weekGroup struct {
	athleteID int64
	week      string
	dates     map[string]struct{}
	pointsOld float64
	latest    time.Time
}

// frequencyPoints awards the weekly consistency bonus. It groups the
// duration-scored records by (athlete, ISO week), counts distinct active days,
// and emits only the incremental amount above the base duration score:
// pointsOld x (multiplier - 1). The base points stay with the duration rule,
// so nothing is counted twice.
//
// Records without a resolvable date have no week and are skipped; records the
// duration rule dropped still mark their day active but add nothing to the
// multiplied base.
func frequencyPoints(scored []scoredRecord, multipliers map[int]float64) []domain.PointEntry {
	groups := make(map[string]*weekGroup)

	for _, s := range scored {
		week := s.record.Week()
		if week == "" {
			continue
		}

		key := fmt.Sprintf("%d|%s", s.record.AthleteID, week)
		group, ok := groups[key]
		if !ok {
			group = &weekGroup{
				athleteID: s.record.AthleteID,
				week:      week,
				dates:     make(map[string]struct{}),
			}
			groups[key] = group
		}

		group.dates[s.record.Date()] = struct{}{}
		if s.scored {
			group.pointsOld += s.points
		}
		if s.record.DateTime.After(group.latest) {
			group.latest = *s.record.DateTime
		}
	}

	ordered := make([]*weekGroup, 0, len(groups))
	for _, group := range groups {
		ordered = append(ordered, group)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].athleteID != ordered[j].athleteID {
			return ordered[i].athleteID < ordered[j].athleteID
		}
		return ordered[i].week < ordered[j].week
	})

	entries := make([]domain.PointEntry, 0, len(ordered))
	for _, group := range ordered {
		days := len(group.dates)
		multiplier, ok := multipliers[days]
		if !ok {
			multiplier = 1
		}

		entries = append(entries, domain.PointEntry{
			AthleteID: group.athleteID,
			DateTime:  calendar.Midnight(group.latest),
			RaisedPoints: fmt.Sprintf(
				"Pontos multiplicados pela regra %g na semana %s, com %d dias ativos",
				multiplier, group.week, days,
			),
			Points: group.pointsOld * (multiplier - 1),
		})
	}

	return entries
}
