package core

import (
	"strings"
	"time"
)

// cellDateLayouts are tried in order when a table cell is read as a date.
var cellDateLayouts = []string{
	dateTimeLayout,
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006",
}

// ParseDate parses a table date cell. Unparseable input reports false so
// callers can drop the row from aggregations.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range cellDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FicheDateLayouts is the fixed priority order used to read the date stored
// in an analysis record: %Y-%m-%d, %d-%m-%Y, %Y/%m/%d, %d/%m/%Y.
var FicheDateLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"2006/1/2",
	"2/1/2006",
}

// ParseFicheDate returns the first successful parse in FicheDateLayouts
// order. Later layouts are never consulted once one matches.
func ParseFicheDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range FicheDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SameDay reports calendar-day equality, ignoring time of day and zone.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayOf truncates t to midnight UTC of its calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MondayWeek is the week of the year with Monday as first day; days before
// the first Monday are week 0 (strftime %W).
func MondayWeek(t time.Time) int {
	weekday := (int(t.Weekday()) + 6) % 7
	return (t.YearDay() - 1 + 7 - weekday) / 7
}
