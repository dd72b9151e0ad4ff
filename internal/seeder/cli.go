package seeder

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/tally/pkg/logger"
)

// SetupLogging initializes the global logger, mirroring output to
// logFile when one is given.
func SetupLogging(logFile, format string) (io.Closer, error) {
	if logFile == "" {
		return io.NopCloser(nil), logger.InitWith(os.Stdout, format)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, reportFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWith(io.MultiWriter(os.Stdout, file), format); err != nil {
		_ = file.Close()
		return nil, err
	}
	return file, nil
}

// ShowHelp prints usage information for the seeder.
func ShowHelp() {
	os.Stdout.WriteString(`Tally Entry Seeder
==================

Fills a running dashboard with random activity, then checks that the
leaderboard and the rendered page agree with what was submitted.

Usage:
  go run ./cmd/seed-entries [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -code string
        Access code (default $TALLY_ACCESS_CODE or 8448)
  -entries int
        Number of entries to submit (default 200)
  -days int
        Spread entries over this many days up to today (default 30)
  -workers int
        Number of concurrent submitters (default 4)
  -timeout duration
        HTTP request timeout (default 10s)
  -report string
        Write a YAML report to this file
  -log string
        Mirror log output to this file
  -log-format string
        text or json (default "text")
  -verbose
        Log every rejected entry
  -help
        Show this help message
`)
}
