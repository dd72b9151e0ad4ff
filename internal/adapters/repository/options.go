package repository

import "time"

const (
	defaultPollInterval = 2 * time.Second
	defaultCollection   = "entries"
)

type options struct {
	pollInterval    time.Duration
	sqlitePath      string
	projectID       string
	collection      string
	credentialsFile string
}

func defaultOptions() options {
	return options{
		pollInterval: defaultPollInterval,
		sqlitePath:   "tally.db",
		collection:   defaultCollection,
	}
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithPollInterval sets how often polling stores check for changes.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

// WithSQLitePath sets the database file of the SQLite store.
func WithSQLitePath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.sqlitePath = path
		}
	}
}

// WithFirestoreProject sets the Google Cloud project of the Firestore store.
func WithFirestoreProject(projectID string) Option {
	return func(o *options) {
		o.projectID = projectID
	}
}

// WithCollection sets the Firestore collection holding entries.
func WithCollection(name string) Option {
	return func(o *options) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithCredentialsFile sets a service account file for Firestore.
func WithCredentialsFile(path string) Option {
	return func(o *options) {
		o.credentialsFile = path
	}
}
