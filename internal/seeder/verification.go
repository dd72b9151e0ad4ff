package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/ranking"
	"github.com/okian/tally/pkg/logger"
)

// ErrMismatch reports that the served board disagrees with the entries
// this run submitted.
var ErrMismatch = errors.New("leaderboard mismatch")

// localTotals sums accepted payloads per consultant.
func localTotals(accepted []Payload) map[string]model.Counts {
	out := make(map[string]model.Counts)
	for _, p := range accepted {
		out[p.Consultant] = out[p.Consultant].Add(p.counts())
	}
	return out
}

func byName(standings []Standing) map[string]model.Counts {
	out := make(map[string]model.Counts, len(standings))
	for _, s := range standings {
		out[s.Name] = s.counts()
	}
	return out
}

func sub(a, b model.Counts) model.Counts {
	return model.Counts{
		Intakes:    a.Intakes - b.Intakes,
		Interviews: a.Interviews - b.Interviews,
		Placements: a.Placements - b.Placements,
		Prospects:  a.Prospects - b.Prospects,
	}
}

// verifyTotals checks that every consultant grew by exactly what this run
// submitted. Entries written concurrently by someone else show up here
// as a mismatch.
func verifyTotals(before, after []Standing, accepted []Payload) error {
	want := localTotals(accepted)
	prev := byName(before)
	for _, s := range after {
		got := sub(s.counts(), prev[s.Name])
		if got != want[s.Name] {
			return fmt.Errorf("%w: %s grew by %+v, submitted %+v", ErrMismatch, s.Name, got, want[s.Name])
		}
		delete(want, s.Name)
	}
	for name, c := range want {
		if !c.IsZero() {
			return fmt.Errorf("%w: %s missing from the leaderboard", ErrMismatch, name)
		}
	}
	return nil
}

// verifyOrder checks positions, medals and the ranking order of the
// served standings against a local ranking of the same totals.
func verifyOrder(standings []Standing) error {
	per := make([]model.Aggregate, len(standings))
	for i, s := range standings {
		per[i] = model.Aggregate{Name: s.Name, Counts: s.counts()}
	}
	want := ranking.Standings(per)
	for i, s := range standings {
		w := want[i]
		if s.Name != w.Name || s.Position != w.Position || s.Medal != string(w.Medal) {
			return fmt.Errorf("%w: position %d is %s (%s), expected %s (%s)",
				ErrMismatch, i+1, s.Name, s.Medal, w.Name, w.Medal)
		}
	}
	return nil
}

// verifyDashboard checks that the rendered page lists the same order.
func verifyDashboard(standings []Standing, page []string) error {
	if len(page) != len(standings) {
		return fmt.Errorf("%w: dashboard shows %d rows, leaderboard has %d", ErrMismatch, len(page), len(standings))
	}
	for i, s := range standings {
		if page[i] != s.Name {
			return fmt.Errorf("%w: dashboard row %d is %s, expected %s", ErrMismatch, i+1, page[i], s.Name)
		}
	}
	return nil
}

// displayTopPerformers logs the podium.
func displayTopPerformers(ctx context.Context, standings []Standing) {
	log := logger.Get()
	for i, s := range standings {
		if i == 3 {
			break
		}
		log.Info(ctx, "podium",
			logger.Int("position", s.Position),
			logger.String("name", s.Name),
			logger.Int("placements", s.Placements),
			logger.Int("intakes", s.Intakes),
		)
	}
}
