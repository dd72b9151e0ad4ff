// Package roster holds the fixed, ordered list of consultants.
package roster

import (
	"errors"
	"strings"
)

// ErrEmpty is returned when a roster would have no members.
var ErrEmpty = errors.New("roster is empty")

// Default is the roster used when none is configured.
var Default = []string{"Marcus", "Lisanna", "Nick", "Gea", "Dion", "Sander", "Yde"}

// Roster is an immutable ordered set of consultant names.
type Roster struct {
	names []string
	index map[string]int
}

// New builds a roster from names. Blank names are skipped and later
// duplicates are dropped, keeping first-seen order.
func New(names []string) (Roster, error) {
	r := Roster{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := r.index[n]; ok {
			continue
		}
		r.index[n] = len(r.names)
		r.names = append(r.names, n)
	}
	if len(r.names) == 0 {
		return Roster{}, ErrEmpty
	}
	return r, nil
}

// Parse splits a comma separated list and builds a roster from it.
func Parse(s string) (Roster, error) {
	return New(strings.Split(s, ","))
}

// Names returns a copy of the member names in roster order.
func (r Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Contains reports whether name is a member.
func (r Roster) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Index returns the position of name, or -1.
func (r Roster) Index(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of members.
func (r Roster) Len() int { return len(r.names) }
