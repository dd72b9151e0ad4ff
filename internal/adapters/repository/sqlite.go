package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	sqliteDriverName = "sqlite"
	memoryPath       = ":memory:"
	entriesTable     = "entries"
)

var entryColumns = []string{
	"id", "name", "date", "week", "month", "year",
	"intakes", "interviews", "placements", "prospects", "created_at",
}

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	date       TEXT NOT NULL,
	week       INTEGER NOT NULL,
	month      INTEGER NOT NULL,
	year       INTEGER NOT NULL,
	intakes    INTEGER NOT NULL DEFAULT 0,
	interviews INTEGER NOT NULL DEFAULT 0,
	placements INTEGER NOT NULL DEFAULT 0,
	prospects  INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_created_at ON entries (created_at DESC);
`

// SQLiteStore persists entries in a local SQLite database and polls it
// for changes made by other processes.
type SQLiteStore struct {
	opts options
	db   *sql.DB
	qb   sq.StatementBuilderType
	log  logger.Logger
}

// NewSQLiteStore returns an SQLiteStore; call Init before use.
func NewSQLiteStore(opts ...Option) *SQLiteStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &SQLiteStore{
		opts: o,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Question),
		log:  logger.Named("sqlite"),
	}
}

// Init opens the database and creates the schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := s.opts.sqlitePath
	if dsn != memoryPath {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.opts.sqlitePath)
	}
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return fmt.Errorf("sqlite open: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createEntriesTable); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite init: %w", err)
	}
	s.db = db
	s.log.Info(ctx, "sqlite store ready", logger.String("path", s.opts.sqlitePath))
	return nil
}

// List returns all entries, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("list", metrics.Since(start)) }()

	if s.db == nil {
		return nil, ErrNotReady
	}
	query, args, err := s.qb.Select(entryColumns...).
		From(entriesTable).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("sqlite list: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var (
			e         model.Entry
			date      string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &date, &e.Week, &e.Month, &e.Year,
			&e.Intakes, &e.Interviews, &e.Placements, &e.Prospects, &createdAt); err != nil {
			metrics.RecordStoreError("list")
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		if d, err := calendar.ParseDay(date); err == nil {
			e.Date = d
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("sqlite list: %w", err)
	}
	return entries, nil
}

// Append inserts e.
func (s *SQLiteStore) Append(ctx context.Context, e model.Entry) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("append", metrics.Since(start)) }()

	if s.db == nil {
		return ErrNotReady
	}
	if e.ID == "" {
		return fmt.Errorf("sqlite append: %w: missing id", ErrInvalidEntry)
	}
	query, args, err := s.qb.Insert(entriesTable).
		Columns(entryColumns...).
		Values(e.ID, e.Name, calendar.FormatDay(e.Date), e.Week, e.Month, e.Year,
			e.Intakes, e.Interviews, e.Placements, e.Prospects, e.CreatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite append: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		metrics.RecordStoreError("append")
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return fmt.Errorf("sqlite append %s: %w", e.ID, ErrDuplicate)
		}
		return fmt.Errorf("sqlite append: %w", err)
	}
	return nil
}

// Subscribe polls the table and calls fn with the full entry set whenever
// the row count or newest entry changes. Errors are delivered once per
// failing streak. The first snapshot is delivered right away.
func (s *SQLiteStore) Subscribe(ctx context.Context, fn func(Snapshot)) (func(), error) {
	if s.db == nil {
		return nil, ErrNotReady
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.opts.pollInterval)
		defer ticker.Stop()

		var (
			last    fingerprint
			primed  bool
			failing bool
		)
		poll := func() {
			entries, err := s.List(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if !failing {
					s.log.Warn(ctx, "sqlite poll failed", logger.Error(err))
					fn(Snapshot{Err: err})
				}
				failing = true
				return
			}
			fp := fingerprintOf(entries)
			if primed && !failing && fp == last {
				return
			}
			last, primed, failing = fp, true, false
			fn(Snapshot{Entries: entries})
		}

		poll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type fingerprint struct {
	count  int
	newest string
}

func fingerprintOf(entries []model.Entry) fingerprint {
	fp := fingerprint{count: len(entries)}
	if len(entries) > 0 {
		fp.newest = entries[0].ID
	}
	return fp
}
