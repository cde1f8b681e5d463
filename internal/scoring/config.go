// Package scoring derives the club point ledger from a snapshot of activity
// records. The engine is pure: it performs no I/O, keeps no state between runs,
// and produces identical output for identical input.
package scoring

import (
	"fmt"
	"time"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/calendar"
)

// Config tunes the three point rules. The zero value of any field falls back
// to the club default at construction time.
type Config struct {
	// ValuePerMinute is credited per whole minute of activity.
	ValuePerMinute float64
	// Multipliers maps active days per week to the weekly bonus multiplier.
	// Day counts not present in the map multiply by 1 (no bonus).
	Multipliers map[int]float64
	// ValuePerEvent is the flat bonus per activity on a bonus date.
	ValuePerEvent float64
	// EventDates lists bonus dates as YYYY-MM-DD keys. Defaults to the last
	// day of each month of the current year.
	EventDates []string
}

// DefaultMultipliers is the club's weekly frequency bonus table.
func DefaultMultipliers() map[int]float64 {
	return map[int]float64{1: 1, 2: 1.2, 3: 1.3, 4: 1.4, 5: 1.5, 6: 1.5, 7: 1.5}
}

// Default returns the standard club configuration.
func Default() Config {
	return Config{
		ValuePerMinute: 1,
		Multipliers:    DefaultMultipliers(),
		ValuePerEvent:  100,
		EventDates:     calendar.MonthEnds(time.Now().Year()),
	}
}

// Validate rejects configurations that would silently corrupt the ledger.
func (c Config) Validate() error {
	if c.ValuePerMinute < 0 {
		return fmt.Errorf("value per minute must not be negative, got %v", c.ValuePerMinute)
	}
	if c.ValuePerEvent < 0 {
		return fmt.Errorf("value per event must not be negative, got %v", c.ValuePerEvent)
	}
	for days, multiplier := range c.Multipliers {
		if days < 1 {
			return fmt.Errorf("multiplier day key must be >= 1, got %d", days)
		}
		if multiplier < 0 {
			return fmt.Errorf("multiplier for %d days must not be negative, got %v", days, multiplier)
		}
	}
	for _, date := range c.EventDates {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("event date %q is not a YYYY-MM-DD date", date)
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	defaults := Default()
	if c.ValuePerMinute == 0 {
		c.ValuePerMinute = defaults.ValuePerMinute
	}
	if c.Multipliers == nil {
		c.Multipliers = defaults.Multipliers
	}
	if c.ValuePerEvent == 0 {
		c.ValuePerEvent = defaults.ValuePerEvent
	}
	if c.EventDates == nil {
		c.EventDates = defaults.EventDates
	}
	return c
}
