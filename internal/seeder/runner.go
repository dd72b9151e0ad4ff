package seeder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tally/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Report is the YAML document written after a run.
type Report struct {
	Stats     Stats      `yaml:"stats"`
	Standings []Standing `yaml:"standings"`
	Entries   []Payload  `yaml:"entries"`
}

// Run unlocks the dashboard, submits random entries and verifies the
// served leaderboard and page against the submitted totals.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	stats := Stats{RunID: uuid.NewString(), StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting seeding run",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("entries", cfg.NumEntries),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	state, err := checkServiceHealth(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is up", logger.String("state", state))

	if err := unlock(ctx, client, cfg.AccessCode); err != nil {
		return nil, err
	}
	roster, err := fetchRoster(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	before, err := getLeaderboard(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("leaderboard before: %w", err)
	}

	entries := generateEntries(ctx, cfg, roster, time.Now().UTC(), &stats)
	accepted := submitEntries(ctx, client, cfg, entries, &stats)

	after, err := getLeaderboard(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("leaderboard after: %w", err)
	}
	stats.StandingsChecked = len(after)

	if err := verifyTotals(before, after, accepted); err != nil {
		return nil, err
	}
	if err := verifyOrder(after); err != nil {
		return nil, err
	}
	page, err := checkDashboard(ctx, client)
	if err != nil {
		return nil, err
	}
	if err := verifyDashboard(after, page); err != nil {
		return nil, err
	}
	displayTopPerformers(ctx, after)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report := &Report{Stats: stats, Standings: after, Entries: accepted}

	if cfg.ReportFile != "" {
		if err := saveReport(ctx, cfg.ReportFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	displayFinalStats(ctx, &stats)
	return report, nil
}

// saveReport writes the report as YAML.
func saveReport(ctx context.Context, path string, report *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, reportFilePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Get().Info(ctx, "report saved", logger.String("file", path))
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, entriesPerSecond float64
	if stats.EntriesSubmitted > 0 {
		successRate = float64(stats.EntriesAccepted) / float64(stats.EntriesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		entriesPerSecond = float64(stats.EntriesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("entriesGenerated", stats.EntriesGenerated),
		logger.Int("entriesSubmitted", stats.EntriesSubmitted),
		logger.Int("entriesAccepted", stats.EntriesAccepted),
		logger.Int("entriesFailed", stats.EntriesFailed),
		logger.Int("celebrations", stats.Celebrations),
		logger.Int("standingsChecked", stats.StandingsChecked),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("entriesPerSecond", entriesPerSecond),
	)
}
