package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestParseClockTwoSegments(t *testing.T) {
	d, err := ParseClock("1:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != time.Minute+5*time.Second {
		t.Fatalf("expected 1m5s got %s", d)
	}
}

func TestParseClockThreeSegments(t *testing.T) {
	d, err := ParseClock("2:30:15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 2*time.Hour+30*time.Minute+15*time.Second {
		t.Fatalf("expected 2h30m15s got %s", d)
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	cases := []string{"abc", "1", "1:2:3:4", "1:-5", "", "one:two"}
	for _, raw := range cases {
		if _, err := ParseClock(raw); !errors.Is(err, ErrMalformedDuration) {
			t.Fatalf("expected ErrMalformedDuration for %q, got %v", raw, err)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	d, err := ParseClock("1:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatClock(d); got != "00:01:05" {
		t.Fatalf("expected 00:01:05 got %s", got)
	}

	d, err = ParseClock("12:03:09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatClock(d); got != "12:03:09" {
		t.Fatalf("expected 12:03:09 got %s", got)
	}
}

func TestParseActivityTimeWithClock(t *testing.T) {
	parsed, err := ParseActivityTime("6:19 PM on Tuesday, November 15, 2022")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := time.Date(2022, time.November, 15, 18, 19, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Fatalf("expected %s got %s", expected, parsed)
	}
}

func TestParseActivityTimeDateOnly(t *testing.T) {
	parsed, err := ParseActivityTime("Tuesday, November 15, 2022")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := time.Date(2022, time.November, 15, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Fatalf("expected %s got %s", expected, parsed)
	}
}

func TestParseActivityTimeRejectsUnknownLayout(t *testing.T) {
	if _, err := ParseActivityTime("2022-11-15T18:19:00Z"); !errors.Is(err, ErrMalformedTimestamp) {
		t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
	}
}

func TestWeekKey(t *testing.T) {
	// 2022-11-15 falls in ISO week 46.
	if got := WeekKey(time.Date(2022, time.November, 15, 10, 0, 0, 0, time.UTC)); got != "202246" {
		t.Fatalf("expected 202246 got %s", got)
	}
	// January 1st 2022 belongs to ISO week 52 of 2021.
	if got := WeekKey(time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)); got != "202152" {
		t.Fatalf("expected 202152 got %s", got)
	}
}

func TestMonthEnds(t *testing.T) {
	dates := MonthEnds(2022)
	if len(dates) != 12 {
		t.Fatalf("expected 12 dates got %d", len(dates))
	}
	if dates[0] != "2022-01-31" {
		t.Fatalf("expected 2022-01-31 got %s", dates[0])
	}
	if dates[1] != "2022-02-28" {
		t.Fatalf("expected 2022-02-28 got %s", dates[1])
	}
	if dates[11] != "2022-12-31" {
		t.Fatalf("expected 2022-12-31 got %s", dates[11])
	}

	// Leap year February.
	if got := MonthEnds(2024)[1]; got != "2024-02-29" {
		t.Fatalf("expected 2024-02-29 got %s", got)
	}
}

func TestMidnight(t *testing.T) {
	ts := time.Date(2022, time.November, 15, 18, 19, 42, 7, time.UTC)
	got := Midnight(ts)
	expected := time.Date(2022, time.November, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Fatalf("expected %s got %s", expected, got)
	}
}

func TestRecentWeeks(t *testing.T) {
	weeks := RecentWeeks(3)
	if len(weeks) != 3 {
		t.Fatalf("expected 3 weeks got %d", len(weeks))
	}
	if weeks[0] != WeekKey(time.Now()) {
		t.Fatalf("expected current week first, got %s", weeks[0])
	}
}
