// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/tally/internal/domain/roster"
)

// Store drivers accepted by StoreDriver.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

// DefaultAccessCode unlocks the entry form when none is configured.
const DefaultAccessCode = "8448"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AccessCode is the shared code that unlocks the entry form.
	AccessCode string `koanf:"access_code"`

	// Roster lists the consultants in display order. It is read from a
	// YAML list or a comma separated string, so it is filled by Load
	// rather than by the unmarshaller.
	Roster []string `koanf:"-"`

	// StoreDriver picks the entry store: memory, sqlite or firestore.
	StoreDriver string `koanf:"store_driver"`

	SQLitePath           string `koanf:"sqlite_path"`
	SQLitePollIntervalMS int    `koanf:"sqlite_poll_interval_ms"`

	FirestoreProject         string `koanf:"firestore_project"`
	FirestoreCollection      string `koanf:"firestore_collection"`
	FirestoreCredentialsFile string `koanf:"firestore_credentials_file"`

	// NoticeQueueSize bounds the change notice queue.
	NoticeQueueSize int `koanf:"notice_queue_size"`

	// NoticeWorkerCount sets the number of notice dispatch workers.
	NoticeWorkerCount int `koanf:"notice_worker_count"`

	// StreamBuffer is the per-subscriber notice buffer of the live stream.
	StreamBuffer int `koanf:"stream_buffer"`

	// MaxSessions caps concurrently unlocked sessions.
	MaxSessions int `koanf:"max_sessions"`

	// MaxEntriesLimit caps GET /api/entries?limit.
	MaxEntriesLimit int `koanf:"max_entries_limit"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		AccessCode:           DefaultAccessCode,
		Roster:               append([]string(nil), roster.Default...),
		StoreDriver:          DriverMemory,
		SQLitePath:           "tally.db",
		SQLitePollIntervalMS: 2000,
		FirestoreCollection:  "entries",
		NoticeQueueSize:      1024,
		NoticeWorkerCount:    1,
		StreamBuffer:         16,
		MaxSessions:          1024,
		MaxEntriesLimit:      500,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.AccessCode) == "":
		return fmt.Errorf("%w: access_code must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.NoticeQueueSize <= 0, c.NoticeWorkerCount <= 0, c.StreamBuffer <= 0, c.MaxSessions <= 0, c.MaxEntriesLimit <= 0:
		return fmt.Errorf("%w: sizes and counts must be positive", ErrInvalidConfig)
	}
	if _, err := roster.New(c.Roster); err != nil {
		return fmt.Errorf("%w: roster: %w", ErrInvalidConfig, err)
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
		if c.SQLitePollIntervalMS <= 0 {
			return fmt.Errorf("%w: sqlite_poll_interval_ms must be positive", ErrInvalidConfig)
		}
	case DriverFirestore:
		if c.FirestoreCollection == "" {
			return fmt.Errorf("%w: firestore_collection must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
