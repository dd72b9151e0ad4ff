// Package aggregate sums entry counts per consultant over a time window.
package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/roster"
)

// ErrUnknownMode is returned by ParseMode for an unsupported range.
var ErrUnknownMode = errors.New("unknown range")

// Mode selects which entries fall into a window.
type Mode string

// Window modes.
const (
	Week  Mode = "week"
	Month Mode = "month"
	Year  Mode = "year"
	All   Mode = "all"
)

// ParseMode maps a query value to a Mode. Empty input means Week.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Week, nil
	case Week, Month, Year, All:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Window is a mode anchored at a reference period.
type Window struct {
	Mode Mode            `json:"mode"`
	Ref  calendar.Period `json:"period"`
}

// NewWindow anchors mode at the bucket of ref.
func NewWindow(mode Mode, ref time.Time) Window {
	return Window{Mode: mode, Ref: calendar.Bucket(ref)}
}

// Contains reports whether an entry's bucket is inside the window.
func (w Window) Contains(p calendar.Period) bool {
	switch w.Mode {
	case Week:
		return p.Week == w.Ref.Week && p.Year == w.Ref.Year
	case Month:
		return p.Month == w.Ref.Month && p.Year == w.Ref.Year
	case Year:
		return p.Year == w.Ref.Year
	case All:
		return true
	default:
		return false
	}
}

// Result is the outcome of Compute.
type Result struct {
	PerConsultant []model.Aggregate `json:"perConsultant"`
	Total         model.Counts      `json:"total"`
}

// Compute sums entries inside w per roster member. The result has exactly
// one element per member in roster order; names outside the roster are
// ignored. A non-empty filter keeps only entries with that name.
func Compute(r roster.Roster, entries []model.Entry, w Window, filter string) Result {
	names := r.Names()
	per := make([]model.Aggregate, len(names))
	for i, n := range names {
		per[i].Name = n
	}

	for _, e := range entries {
		if filter != "" && e.Name != filter {
			continue
		}
		i := r.Index(e.Name)
		if i < 0 {
			continue
		}
		if !w.Contains(period(e)) {
			continue
		}
		per[i].Counts = per[i].Counts.Add(e.Counts())
	}

	var total model.Counts
	for _, a := range per {
		total = total.Add(a.Counts)
	}
	return Result{PerConsultant: per, Total: total}
}

// period recomputes the bucket from the entry date; stored fields are
// only trusted when the date is missing.
func period(e model.Entry) calendar.Period {
	if e.Date.IsZero() {
		return calendar.Period{Week: e.Week, Month: e.Month, Year: e.Year}
	}
	return calendar.Bucket(e.Date)
}
