package normalize

import (
	"strings"
	"time"
)

// YearPolicy controls what happens to imported dates whose year lies before
// the current calendar year.
type YearPolicy string

const (
	// YearPolicyCurrent moves stale years forward to the current year.
	// OCR and speech sources often misread or omit the year.
	YearPolicyCurrent YearPolicy = "current"
	// YearPolicyKeep keeps the year as recognized, for back-dated archives.
	YearPolicyKeep YearPolicy = "keep"
)

// dateLayouts are tried in order. dateOnly marks layouts without a time of day.
var dateLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.DateOnly, true},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{"02.01.2006", true},
	{"02/01/2006", true},
	{"2006/01/02", true},
}

var clockLayouts = []string{"15:04:05", "15:04"}

// Date turns a recognized date and optional time of day into a timestamp.
//
// Missing or unparsable dates fall back to now. A separately recognized time
// (HH:MM or HH:MM:SS) wins over any time carried by raw; when neither is
// present the clock of now is used so same-day rows keep distinct timestamps.
func Date(raw, rawTime string, now time.Time, policy YearPolicy) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}

	parsed, dateOnly, ok := parseDate(raw, now.Location())
	if !ok {
		return now
	}

	if policy != YearPolicyKeep && parsed.Year() < now.Year() {
		parsed = withYear(parsed, now.Year())
	}

	if h, m, s, ok := parseClock(rawTime); ok {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), h, m, s, 0, parsed.Location())
	}

	if !dateOnly {
		return parsed
	}

	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, now.Location())
}

// SameDay reports whether a and b fall on the same calendar day, ignoring time
// of day. b is read in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()

	return ay == by && am == bm && ad == bd
}

// SameMinute reports whether a and b share the same hour and minute.
func SameMinute(a, b time.Time) bool {
	b = b.In(a.Location())

	return a.Hour() == b.Hour() && a.Minute() == b.Minute()
}

func parseDate(raw string, loc *time.Location) (time.Time, bool, bool) {
	for _, l := range dateLayouts {
		t, err := time.ParseInLocation(l.layout, raw, loc)
		if err == nil {
			return t, l.dateOnly, true
		}
	}

	return time.Time{}, false, false
}

func parseClock(raw string) (int, int, int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, 0, false
	}

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.Hour(), t.Minute(), t.Second(), true
		}
	}

	return 0, 0, 0, false
}

// withYear keeps month and day, clamping 29 February to the 28th in non-leap years.
func withYear(t time.Time, year int) time.Time {
	day := t.Day()
	if last := daysIn(t.Month(), year); day > last {
		day = last
	}

	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
