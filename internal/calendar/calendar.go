// Package calendar holds the date conventions shared by the scheduler,
// the ledger and the knowledge store.
package calendar

import (
	"regexp"
	"time"
)

// DateLayout is the YYYY-MM-DD form used for every stored date
const DateLayout = "2006-01-02"

var embeddedDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Today returns the calendar date of t in loc
func Today(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// WeekOf returns midnight of the Monday on or before t's calendar date
func WeekOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekKey formats WeekOf(t) as YYYY-MM-DD
func WeekKey(t time.Time) string {
	return WeekOf(t).Format(DateLayout)
}

// EmbeddedDate finds the first valid YYYY-MM-DD inside s
func EmbeddedDate(s string) (time.Time, bool) {
	for _, candidate := range embeddedDate.FindAllString(s, -1) {
		if d, err := time.Parse(DateLayout, candidate); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
