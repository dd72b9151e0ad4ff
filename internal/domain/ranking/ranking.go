// Package ranking orders consultants for the leaderboard.
package ranking

import (
	"sort"

	"github.com/okian/tally/internal/domain/model"
)

// Medal is the display tier of a standing.
type Medal string

// Medal tiers.
const (
	Gold     Medal = "gold"
	Silver   Medal = "silver"
	Bronze   Medal = "bronze"
	Finisher Medal = "finisher"
)

// Standing is a ranked aggregate with its 1-based position.
type Standing struct {
	Position int   `json:"position"`
	Medal    Medal `json:"medal"`
	model.Aggregate
}

// Rank returns a new slice ordered by placements, then intakes, then
// interviews, all descending. Remaining ties keep input order.
func Rank(per []model.Aggregate) []model.Aggregate {
	out := make([]model.Aggregate, len(per))
	copy(out, per)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Placements != b.Placements {
			return a.Placements > b.Placements
		}
		if a.Intakes != b.Intakes {
			return a.Intakes > b.Intakes
		}
		return a.Interviews > b.Interviews
	})
	return out
}

// Standings ranks per and attaches positions and medals.
func Standings(per []model.Aggregate) []Standing {
	ranked := Rank(per)
	out := make([]Standing, len(ranked))
	for i, a := range ranked {
		out[i] = Standing{Position: i + 1, Medal: medalFor(i), Aggregate: a}
	}
	return out
}

func medalFor(i int) Medal {
	switch i {
	case 0:
		return Gold
	case 1:
		return Silver
	case 2:
		return Bronze
	default:
		return Finisher
	}
}
