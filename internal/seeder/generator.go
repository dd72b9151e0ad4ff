package seeder

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/pkg/logger"
)

// Activity profiles picked per entry.
const (
	profileQuiet = iota
	profileSteady
	profileBusy
	profileCloser
	profileCount
)

// randIntn returns a uniform int in [0, n) using crypto/rand.
func randIntn(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// between returns a uniform int in [lo, hi].
func between(lo, hi int) int {
	return lo + randIntn(hi-lo+1)
}

// generateEntries creates cfg.NumEntries payloads spread over the roster
// and the last cfg.Days days ending at today.
func generateEntries(ctx context.Context, cfg *Config, roster []string, today time.Time, stats *Stats) []Payload {
	logger.Get().Info(ctx, "generating entries",
		logger.Int("entries", cfg.NumEntries),
		logger.Int("consultants", len(roster)),
		logger.Int("days", cfg.Days),
	)

	days := cfg.Days
	if days < 1 {
		days = 1
	}
	out := make([]Payload, cfg.NumEntries)
	for i := range out {
		day := calendar.Day(today).AddDate(0, 0, -randIntn(days))
		out[i] = generateSingleEntry(roster[randIntn(len(roster))], day)
	}
	stats.EntriesGenerated = len(out)
	return out
}

// generateSingleEntry draws counts from one activity profile.
func generateSingleEntry(name string, day time.Time) Payload {
	p := Payload{Consultant: name, Date: calendar.FormatDay(day)}
	switch randIntn(profileCount) {
	case profileQuiet:
		p.Intakes = between(0, 1)
		p.Prospects = between(0, 1)
	case profileSteady:
		p.Intakes = between(1, 4)
		p.Interviews = between(0, 2)
		p.Prospects = between(0, 2)
	case profileBusy:
		p.Intakes = between(3, 8)
		p.Interviews = between(2, 5)
		p.Prospects = between(1, 3)
	case profileCloser:
		p.Interviews = between(1, 3)
		p.Placements = between(1, 2)
	}
	return p
}
