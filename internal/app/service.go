// Package service owns the in-memory board of entries and implements the
// operations the HTTP API depends on.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tally/internal/adapters/mq/queue"
	"github.com/okian/tally/internal/adapters/mq/worker"
	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/roster"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Load states reported by Status.
const (
	StatusLoading  = "loading"
	StatusLive     = "live"
	StatusDegraded = "degraded"
)

// Status describes the freshness of the board.
type Status struct {
	State    string    `json:"state"`
	Error    string    `json:"error,omitempty"`
	LastLoad time.Time `json:"lastLoad,omitempty"`
	Entries  int       `json:"entries"`
	Version  uint64    `json:"version"`
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, model.Notice) error { return nil }

// Service holds the board and coordinates the store, the notice pipeline
// and the derived views.
type Service struct {
	store  repository.Store
	roster roster.Roster

	// board
	mu       sync.RWMutex
	entries  []model.Entry
	version  uint64
	writes   uint64
	state    string
	lastErr  error
	lastLoad time.Time

	reloadGen atomic.Uint64
	memo      *memo

	// lifecycle
	lifeMu      sync.Mutex
	started     bool
	stopped     atomic.Bool
	cancel      context.CancelFunc
	unsubscribe func()

	// notices
	queueSize   int
	workerCount int
	publisher   worker.Publisher
	queue       *queue.InMemoryQueue
	pool        *worker.Pool

	maxEntriesLimit int
	now             func() time.Time
	logger          logger.Logger
}

// New constructs a Service over store for the given roster. The store is
// initialized by Start and closed by Stop.
func New(store repository.Store, r roster.Roster, opts ...Option) *Service {
	s := &Service{
		store:           store,
		roster:          r,
		state:           StatusLoading,
		memo:            newMemo(),
		queueSize:       defaultQueueSize,
		workerCount:     defaultWorkerCount,
		publisher:       discardPublisher{},
		maxEntriesLimit: defaultMaxEntriesLimit,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	metrics.UpdateLoadStatus(StatusLoading)
	return s
}

// Start initializes the store, loads the board, subscribes to pushed
// changes when the store supports it, and starts notice dispatch. A failed
// initial load leaves the service running in the degraded state.
func (s *Service) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting tally service...")

	if err := s.store.Init(ctx); err != nil {
		metrics.RecordErrorByComponent("store", "init")
		return fmt.Errorf("init store: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.publisher)
	s.pool.Start(runCtx)

	if err := s.Reload(ctx); err != nil {
		s.logger.Warn(ctx, "initial load failed", logger.Error(err))
	}

	if sub, ok := s.store.(repository.Subscriber); ok {
		unsubscribe, err := sub.Subscribe(runCtx, s.applySnapshot)
		if err != nil {
			s.logger.Warn(ctx, "subscribe failed", logger.Error(err))
			s.setStatus(StatusDegraded, fmt.Errorf("subscribe: %w", err))
		} else {
			s.unsubscribe = unsubscribe
		}
	}

	s.started = true
	s.logger.Info(ctx, "tally service started",
		logger.Int("roster", s.roster.Len()),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop unsubscribes, drains notice dispatch and closes the store. No
// snapshot or reload result is applied afterwards.
func (s *Service) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping tally service...")

	s.stopped.Store(true)
	s.reloadGen.Add(1)

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "error closing store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "tally service stopped")
}

// Reload fetches every entry and replaces the board. On failure the stale
// board is kept, the status becomes degraded, and an ErrLoad is returned.
// A reload overtaken by a newer one, or by Stop, discards its result.
// Entries merged while the fetch was in flight are kept: the fetched list
// is merged over the board instead of replacing it.
func (s *Service) Reload(ctx context.Context) error {
	if s.stopped.Load() {
		return ErrNotStarted
	}
	gen := s.reloadGen.Add(1)
	s.mu.RLock()
	writes := s.writes
	s.mu.RUnlock()

	start := time.Now()
	entries, err := s.store.List(ctx)
	if gen != s.reloadGen.Load() || s.stopped.Load() {
		metrics.RecordLoad("superseded")
		s.logger.Debug(ctx, "discarding superseded reload")
		return nil
	}
	if err != nil {
		metrics.RecordLoad("error")
		metrics.RecordErrorByComponent("store", "list")
		loadErr := fmt.Errorf("%w: %w", ErrLoad, err)
		s.setStatus(StatusDegraded, loadErr)
		return loadErr
	}

	s.mu.Lock()
	if gen != s.reloadGen.Load() {
		s.mu.Unlock()
		metrics.RecordLoad("superseded")
		return nil
	}
	if s.writes == writes {
		s.replaceLocked(entries)
	} else {
		s.mergeLocked(entries...)
	}
	s.lastLoad = s.now().UTC()
	version := s.version
	s.mu.Unlock()

	metrics.RecordLoad("ok")
	s.setStatus(StatusLive, nil)
	s.notify(ctx, model.Notice{Kind: model.NoticeRefresh, Version: version})
	s.logger.Info(ctx, "board loaded",
		logger.Int("entries", len(entries)),
		logger.Float64("latencyMs", metrics.Since(start)),
	)
	return nil
}

// applySnapshot merges a pushed snapshot into the board.
func (s *Service) applySnapshot(snap repository.Snapshot) {
	if s.stopped.Load() {
		return
	}
	ctx := context.Background()
	if snap.Err != nil {
		metrics.RecordErrorByComponent("store", "subscribe")
		s.logger.Warn(ctx, "snapshot delivery failed", logger.Error(snap.Err))
		s.setStatus(StatusDegraded, fmt.Errorf("%w: %w", ErrLoad, snap.Err))
		return
	}

	s.mu.Lock()
	changed := s.mergeLocked(snap.Entries...)
	version := s.version
	if s.lastLoad.IsZero() {
		s.lastLoad = s.now().UTC()
	}
	s.mu.Unlock()

	metrics.RecordSnapshotMerge()
	s.setStatus(StatusLive, nil)
	if changed {
		s.notify(ctx, model.Notice{Kind: model.NoticeRefresh, Version: version})
	}
}

// setStatus records the load state and announces transitions.
func (s *Service) setStatus(state string, err error) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.lastErr = err
	if state == StatusLive {
		s.lastErr = nil
	}
	version := s.version
	s.mu.Unlock()

	metrics.UpdateLoadStatus(state)
	if prev != state {
		s.notify(context.Background(), model.Notice{Kind: model.NoticeStatus, Status: state, Version: version})
	}
}

// notify enqueues a change notice; a full queue drops it.
func (s *Service) notify(ctx context.Context, n model.Notice) {
	if s.queue == nil {
		return
	}
	if n.At.IsZero() {
		n.At = s.now().UTC()
	}
	if !s.queue.Enqueue(ctx, n) {
		s.logger.Debug(ctx, "notice dropped", logger.String("kind", string(n.Kind)))
	}
}

// Status returns the current load status.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *Service) statusLocked() Status {
	st := Status{
		State:    s.state,
		LastLoad: s.lastLoad,
		Entries:  len(s.entries),
		Version:  s.version,
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// Roster returns the consultant names in roster order.
func (s *Service) Roster() []string {
	return s.roster.Names()
}

// Entries returns up to limit entries, newest first. A non-positive limit
// uses the default; larger limits are capped.
func (s *Service) Entries(_ context.Context, limit int) []model.Entry {
	if limit <= 0 {
		limit = defaultEntriesLimit
	}
	if limit > s.maxEntriesLimit {
		limit = s.maxEntriesLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]model.Entry, limit)
	copy(out, s.entries[:limit])
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.lifeMu.Lock()
	started := s.started
	s.lifeMu.Unlock()

	st := s.Status()
	stats := map[string]interface{}{
		"started":     started,
		"status":      st.State,
		"entries":     st.Entries,
		"version":     st.Version,
		"roster":      s.roster.Len(),
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"memoSize":    s.memo.size(),
	}
	if st.Error != "" {
		stats["error"] = st.Error
	}
	if !st.LastLoad.IsZero() {
		stats["lastLoad"] = st.LastLoad
	}
	if started && s.queue != nil {
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["noticesPublished"] = s.pool.Processed()
	}
	metrics.UpdateBoardEntries(st.Entries)
	return stats
}
