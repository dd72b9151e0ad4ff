package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/internal/seeder"
	"github.com/okian/tally/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumEntries = 200
	defaultDays       = 30
	defaultWorkers    = 4
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	code := os.Getenv(config.EnvPrefix + "ACCESS_CODE")
	if code == "" {
		code = config.DefaultAccessCode
	}

	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		accessCode = flag.String("code", code, "Access code")
		numEntries = flag.Int("entries", defaultNumEntries, "Number of entries to submit")
		days       = flag.Int("days", defaultDays, "Spread entries over this many days up to today")
		workers    = flag.Int("workers", defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		reportFile = flag.String("report", "", "Write a YAML report to this file")
		logFile    = flag.String("log", "", "Mirror log output to this file")
		logFormat  = flag.String("log-format", logger.FormatText, "text or json")
		verbose    = flag.Bool("verbose", false, "Log every rejected entry")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeder.ShowHelp()
		return
	}

	closer, err := seeder.SetupLogging(*logFile, *logFormat)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)

	cfg := &seeder.Config{
		BaseURL:    *baseURL,
		AccessCode: *accessCode,
		NumEntries: *numEntries,
		Days:       *days,
		Workers:    *workers,
		Timeout:    *timeout,
		ReportFile: *reportFile,
		Verbose:    *verbose,
	}

	_, err = seeder.Run(ctx, cfg)
	cancel()
	stop()
	_ = closer.Close()
	if err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
