// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Entry is one submitted activity record.
type Entry struct {
	ID         string    `json:"id" firestore:"id"`
	Name       string    `json:"name" firestore:"name"`
	Date       time.Time `json:"date" firestore:"date"` // UTC midnight of the attributed day
	Week       int       `json:"week" firestore:"week"`
	Month      int       `json:"month" firestore:"month"`
	Year       int       `json:"year" firestore:"year"`
	Intakes    int       `json:"intakes" firestore:"intakes"`
	Interviews int       `json:"interviews" firestore:"interviews"`
	Placements int       `json:"placements" firestore:"placements"`
	Prospects  int       `json:"prospects" firestore:"prospects"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"` // ordering/display only
}

// Counts returns the four activity counts of the entry.
func (e Entry) Counts() Counts {
	return Counts{
		Intakes:    e.Intakes,
		Interviews: e.Interviews,
		Placements: e.Placements,
		Prospects:  e.Prospects,
	}
}

// Newer reports whether e sorts before o in a newest-first listing.
// Equal timestamps fall back to id descending so the order is total.
func (e Entry) Newer(o Entry) bool {
	if !e.CreatedAt.Equal(o.CreatedAt) {
		return e.CreatedAt.After(o.CreatedAt)
	}
	return e.ID > o.ID
}

// Form carries raw, unvalidated count input as typed into the form.
type Form struct {
	Intakes    string
	Interviews string
	Placements string
	Prospects  string
}

// Counts coerces every field of the form with Coerce.
func (f Form) Counts() Counts {
	return Counts{
		Intakes:    Coerce(f.Intakes),
		Interviews: Coerce(f.Interviews),
		Placements: Coerce(f.Placements),
		Prospects:  Coerce(f.Prospects),
	}
}

// Coerce turns user input into a non-negative count. Empty, non-numeric,
// NaN, infinite and negative input yields 0; fractions are truncated and
// very large values clamp to math.MaxInt32.
func Coerce(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
