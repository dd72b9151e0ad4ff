package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/tally/internal/domain/model"
)

func setupSQLite(t *testing.T, opts ...Option) (*SQLiteStore, func()) {
	t.Helper()

	s := NewSQLiteStore(append([]Option{WithSQLitePath(memoryPath)}, opts...)...)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init sqlite store: %v", err)
	}
	return s, func() { _ = s.Close() }
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	s, cleanup := setupSQLite(t)
	defer cleanup()
	ctx := context.Background()

	t0 := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)
	first := testEntry("e1", t0)
	second := testEntry("e2", t0.Add(time.Second))
	second.Name, second.Intakes, second.Prospects = "Gea", 3, 2

	for _, e := range []model.Entry{first, second} {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("append %s: %v", e.ID, err)
		}
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "e2" || entries[1].ID != "e1" {
		t.Errorf("expected newest first, got %s, %s", entries[0].ID, entries[1].ID)
	}

	got := entries[0]
	if got.Name != "Gea" || got.Intakes != 3 || got.Prospects != 2 || got.Placements != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
	if !got.Date.Equal(second.Date) {
		t.Errorf("expected date %v, got %v", second.Date, got.Date)
	}
	if !got.CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("expected createdAt %v, got %v", second.CreatedAt, got.CreatedAt)
	}
	if got.Week != 20 || got.Month != 5 || got.Year != 2024 {
		t.Errorf("unexpected bucket: %d/%d/%d", got.Week, got.Month, got.Year)
	}
}

func TestSQLiteStore_Duplicate(t *testing.T) {
	s, cleanup := setupSQLite(t)
	defer cleanup()
	ctx := context.Background()

	e := testEntry("dup", time.Now().UTC())
	if err := s.Append(ctx, e); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, e); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if err := s.Append(ctx, model.Entry{}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestSQLiteStore_NotReady(t *testing.T) {
	s := NewSQLiteStore()
	ctx := context.Background()

	if _, err := s.List(ctx); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady from List, got %v", err)
	}
	if err := s.Append(ctx, testEntry("x", time.Now())); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady from Append, got %v", err)
	}
	if _, err := s.Subscribe(ctx, func(Snapshot) {}); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady from Subscribe, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("close on unopened store: %v", err)
	}
}

func TestSQLiteStore_Subscribe(t *testing.T) {
	s, cleanup := setupSQLite(t, WithPollInterval(10*time.Millisecond))
	defer cleanup()
	ctx := context.Background()

	var (
		mu    sync.Mutex
		snaps []Snapshot
	)
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps)
	}

	stop, err := s.Subscribe(ctx, func(snap Snapshot) {
		mu.Lock()
		snaps = append(snaps, snap)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	waitFor(t, func() bool { return count() >= 1 })

	if err := s.Append(ctx, testEntry("e1", time.Now().UTC())); err != nil {
		t.Fatalf("append: %v", err)
	}
	waitFor(t, func() bool { return count() >= 2 })

	// Unchanged table produces no further snapshots.
	time.Sleep(50 * time.Millisecond)
	if n := count(); n != 2 {
		t.Errorf("expected 2 snapshots, got %d", n)
	}

	stop()
	if err := s.Append(ctx, testEntry("e2", time.Now().UTC())); err != nil {
		t.Fatalf("append: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if n := count(); n != 2 {
		t.Errorf("expected no delivery after stop, got %d snapshots", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(snaps[1].Entries) != 1 || snaps[1].Entries[0].ID != "e1" {
		t.Errorf("unexpected second snapshot: %+v", snaps[1])
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
