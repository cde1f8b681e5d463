package scoring

import (
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
)

// Scorer evaluates the three point rules over an activity snapshot and
// combines their output into one ledger.
type Scorer struct {
	cfg Config
}

// New builds a Scorer, filling unset config fields with club defaults and
// validating the result.
func New(cfg Config) (*Scorer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score recomputes the full ledger from the snapshot. The duration rule runs
// first and attaches its points to each record, the frequency rule multiplies
// on top of those, and the event rule reads the raw snapshot; the three
// outputs are concatenated in that order, each preserving its own row order.
// Nothing is re-sorted, re-aggregated, or deduplicated across rules.
func (s *Scorer) Score(records []domain.ActivityRecord) []domain.PointEntry {
	durationEntries, scored := durationPoints(records, s.cfg.ValuePerMinute)
	frequencyEntries := frequencyPoints(scored, s.cfg.Multipliers)
	eventEntries := eventPoints(records, s.cfg.ValuePerEvent, s.cfg.EventDates)

	ledger := make([]domain.PointEntry, 0, len(durationEntries)+len(frequencyEntries)+len(eventEntries))
	ledger = append(ledger, durationEntries...)
	ledger = append(ledger, frequencyEntries...)
	ledger = append(ledger, eventEntries...)
	return ledger
}

// Total sums a ledger; exposed for run summaries.
func Total(entries []domain.PointEntry) float64 {
	var total float64
	for _, entry := range entries {
		total += entry.Points
	}
	return total
}
