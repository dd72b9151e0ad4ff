// Package calendar maps calendar days to their ISO week, month and year.
//
// Everything here works in UTC. A day is the UTC midnight carrying the
// year/month/day of the input as written, so a date picked in any zone
// lands in the same bucket everywhere.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	hoursPerDay  = 24
	daysPerWeek  = 7
	thursdayDiff = 4 // offset from Monday-based weekday to that week's Thursday
	dayLayout    = "2006-01-02"
)

// ErrInvalidDay is returned by ParseDay for unparseable input.
var ErrInvalidDay = errors.New("invalid day")

// Period is the bucket a day falls into.
type Period struct {
	Week  int `json:"week"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// String renders the period as YYYY-MM/Www.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d/W%02d", p.Year, p.Month, p.Week)
}

// Day truncates t to the UTC midnight of its own year, month and day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the UTC day of now.
func Today(now time.Time) time.Time {
	return Day(now.UTC())
}

// ParseDay accepts YYYY-MM-DD or an RFC3339 timestamp and returns its day.
// RFC3339 input is read in UTC, matching how entries are stored.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t.UTC()), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// FormatDay renders a day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return Day(t).Format(dayLayout)
}

// Bucket returns the ISO week, 1-indexed month and calendar year of t.
func Bucket(t time.Time) Period {
	day := Day(t)
	return Period{
		Week:  ISOWeek(day),
		Month: int(day.Month()),
		Year:  day.Year(),
	}
}

// ISOWeek returns the ISO-8601 week number of t's day: weeks start on
// Monday and week 1 holds the year's first Thursday. The week may belong
// to the previous or next year for dates near the year boundary.
func ISOWeek(t time.Time) int {
	day := Day(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = daysPerWeek
	}
	thursday := day.AddDate(0, 0, thursdayDiff-weekday)
	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(yearStart).Hours() / hoursPerDay)
	// ceil((days + 1) / 7) in integer arithmetic.
	return (days + daysPerWeek) / daysPerWeek
}
