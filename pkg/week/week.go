// Package week provides ISO-8601 week utilities shared by the ingestion
// pipeline and the reporting queries. All computations use UTC to avoid
// timezone drift between the server and the dashboard.
package week

import (
	"fmt"
	"regexp"
	"time"
)

var keyPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// Key returns the ISO week identifier (e.g. "2025-W32") for a date.
// ISO weeks start on Monday; week 1 is the week containing the year's
// first Thursday.
func Key(t time.Time) string {
	year, wk := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, wk)
}

// Parse splits an ISO week identifier into year and week number.
func Parse(iso string) (year int, wk int, err error) {
	m := keyPattern.FindStringSubmatch(iso)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid ISO week %q, expected YYYY-Www", iso)
	}
	fmt.Sscanf(m[1], "%d", &year)
	fmt.Sscanf(m[2], "%d", &wk)
	if wk < 1 || wk > 53 {
		return 0, 0, fmt.Errorf("invalid ISO week number %d in %q", wk, iso)
	}
	return year, wk, nil
}

// Monday returns the Monday (00:00 UTC) of the given ISO week.
func Monday(year, wk int) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	day := int(jan4.Weekday())
	if day == 0 {
		day = 7
	}
	week1Monday := jan4.AddDate(0, 0, -(day - 1))
	return week1Monday.AddDate(0, 0, (wk-1)*7)
}

// Span returns the Monday and Sunday (both 00:00 UTC) of the ISO week
// containing t.
func Span(t time.Time) (start, end time.Time) {
	t = t.UTC()
	day := int(t.Weekday())
	if day == 0 {
		day = 7
	}
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(day - 1))
	end = start.AddDate(0, 0, 6)
	return start, end
}

// Shift moves an ISO week identifier by delta weeks. Invalid input is
// returned unchanged.
func Shift(iso string, delta int) string {
	year, wk, err := Parse(iso)
	if err != nil {
		return iso
	}
	return Key(Monday(year, wk).AddDate(0, 0, delta*7))
}

// LatestComplete returns the identifier of the most recent fully elapsed
// ISO week relative to now.
func LatestComplete(now time.Time) string {
	start, _ := Span(now)
	return Key(start.AddDate(0, 0, -7))
}

// Backfill returns n consecutive ISO week identifiers ending at endISO,
// oldest first. An invalid endISO yields nil.
func Backfill(endISO string, n int) []string {
	year, wk, err := Parse(endISO)
	if err != nil {
		return nil
	}
	endMonday := Monday(year, wk)
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, Key(endMonday.AddDate(0, 0, -i*7)))
	}
	return out
}
