// Package calendar provides ISO-week bucketing and the time formats used by
// the Strava club scraper.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDuration is returned when a duration string is neither MM:SS nor HH:MM:SS.
var ErrMalformedDuration = errors.New("malformed duration format")

// ErrMalformedTimestamp is returned when a timestamp string matches no known activity format.
var ErrMalformedTimestamp = errors.New("malformed timestamp format")

// Activity pages render the timestamp with or without a time of day.
var activityTimeLayouts = []string{
	"3:04 PM on Monday, January 2, 2006",
	"Monday, January 2, 2006",
}

// WeekKey returns the ISO-week bucket of t as a YYYYWW string.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d%02d", year, week)
}

// RecentWeeks returns n week keys counting back from today, most recent first.
func RecentWeeks(n int) []string {
	today := time.Now()
	weeks := make([]string, 0, n)
	for i := 0; i < n; i++ {
		weeks = append(weeks, WeekKey(today.AddDate(0, 0, -7*i)))
	}
	return weeks
}

// ParseClock parses a scraped duration string. Two segments are read as MM:SS,
// three as HH:MM:SS. Anything else is a hard error: silently zeroing a
// duration would corrupt scores without detection.
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")

	var hours, minutes, seconds int
	var err error
	switch len(parts) {
	case 2:
		minutes, err = atoiPart(parts[0])
		if err == nil {
			seconds, err = atoiPart(parts[1])
		}
	case 3:
		hours, err = atoiPart(parts[0])
		if err == nil {
			minutes, err = atoiPart(parts[1])
		}
		if err == nil {
			seconds, err = atoiPart(parts[2])
		}
	default:
		err = fmt.Errorf("expected 2 or 3 segments, got %d", len(parts))
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedDuration, s, err)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}

func atoiPart(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative segment %d", v)
	}
	return v, nil
}

// FormatClock renders d as zero-padded HH:MM:SS.
func FormatClock(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// ParseActivityTime parses the scraped activity timestamp, trying each known
// layout in order.
func ParseActivityTime(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range activityTimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// DateKey returns the calendar date of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Midnight truncates t to date-only granularity, keeping its location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthEnds returns the last calendar day of each month of year as YYYY-MM-DD
// strings, in month order.
func MonthEnds(year int) []string {
	dates := make([]string, 0, 12)
	for month := time.January; month <= time.December; month++ {
		last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
		dates = append(dates, DateKey(last))
	}
	return dates
}
