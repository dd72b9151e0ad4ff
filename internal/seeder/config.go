// Package seeder fills a running dashboard with random activity and checks
// that the served leaderboard matches a local recomputation.
package seeder

import (
	"time"

	"github.com/okian/tally/internal/domain/model"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	AccessCode string        // Code that unlocks the entry form
	NumEntries int           // Number of entries to submit
	Days       int           // Spread entries over this many days back from today
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	ReportFile string        // YAML report path; empty skips the report
	Verbose    bool          // Enable verbose logging
}

// Payload is one entry as posted to /api/entries.
type Payload struct {
	Consultant string `json:"consultant" yaml:"consultant"`
	Date       string `json:"date" yaml:"date"`
	Intakes    int    `json:"intakes" yaml:"intakes"`
	Interviews int    `json:"interviews" yaml:"interviews"`
	Placements int    `json:"placements" yaml:"placements"`
	Prospects  int    `json:"prospects" yaml:"prospects"`
}

func (p Payload) counts() model.Counts {
	return model.Counts{Intakes: p.Intakes, Interviews: p.Interviews, Placements: p.Placements, Prospects: p.Prospects}
}

// Standing is a leaderboard row as served by /api/leaderboard.
type Standing struct {
	Position   int    `json:"position"`
	Medal      string `json:"medal"`
	Name       string `json:"name"`
	Intakes    int    `json:"intakes"`
	Interviews int    `json:"interviews"`
	Placements int    `json:"placements"`
	Prospects  int    `json:"prospects"`
}

func (s Standing) counts() model.Counts {
	return model.Counts{Intakes: s.Intakes, Interviews: s.Interviews, Placements: s.Placements, Prospects: s.Prospects}
}

// Stats holds run statistics.
type Stats struct {
	RunID            string        `yaml:"run_id"`
	EntriesGenerated int           `yaml:"entries_generated"`
	EntriesSubmitted int           `yaml:"entries_submitted"`
	EntriesAccepted  int           `yaml:"entries_accepted"`
	EntriesFailed    int           `yaml:"entries_failed"`
	Celebrations     int           `yaml:"celebrations"`
	StandingsChecked int           `yaml:"standings_checked"`
	StartTime        time.Time     `yaml:"start_time"`
	EndTime          time.Time     `yaml:"end_time"`
	Duration         time.Duration `yaml:"duration"`
}
