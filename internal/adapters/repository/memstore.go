package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// MemoryStore keeps entries in process memory and pushes a full snapshot
// to subscribers after every append.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.Entry
	ids     map[string]struct{}
	closed  bool

	subMu  sync.Mutex
	subs   map[int]*subscription
	nextID int
}

type subscription struct {
	mu      sync.Mutex
	fn      func(Snapshot)
	stopped bool
}

func (s *subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.fn(snap)
	}
}

func (s *subscription) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids:  make(map[string]struct{}),
		subs: make(map[int]*subscription),
	}
}

// Init is a no-op.
func (m *MemoryStore) Init(context.Context) error { return nil }

// List returns a newest-first copy of all entries.
func (m *MemoryStore) List(ctx context.Context) ([]model.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("list", metrics.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.snapshotLocked(), nil
}

// Append stores e and notifies subscribers.
func (m *MemoryStore) Append(ctx context.Context, e model.Entry) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("append", metrics.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		return fmt.Errorf("append: %w: missing id", ErrInvalidEntry)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if _, ok := m.ids[e.ID]; ok {
		m.mu.Unlock()
		metrics.RecordStoreError("append")
		return fmt.Errorf("append %s: %w", e.ID, ErrDuplicate)
	}
	m.ids[e.ID] = struct{}{}
	m.entries = append(m.entries, e)
	snap := Snapshot{Entries: m.snapshotLocked()}
	m.mu.Unlock()

	m.publish(snap)
	return nil
}

// Subscribe registers fn and immediately delivers the current entries.
func (m *MemoryStore) Subscribe(ctx context.Context, fn func(Snapshot)) (func(), error) {
	entries, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	sub := &subscription{fn: fn}
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = sub
	m.subMu.Unlock()

	sub.deliver(Snapshot{Entries: entries})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			sub.stop()
		})
	}, nil
}

// Close drops all subscribers and rejects further calls.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.subMu.Lock()
	subs := m.subs
	m.subs = make(map[int]*subscription)
	m.subMu.Unlock()
	for _, s := range subs {
		s.stop()
	}
	return nil
}

func (m *MemoryStore) publish(snap Snapshot) {
	m.subMu.Lock()
	subs := make([]*subscription, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.subMu.Unlock()

	for _, s := range subs {
		s.deliver(snap)
	}
}

// snapshotLocked must be called with m.mu held.
func (m *MemoryStore) snapshotLocked() []model.Entry {
	out := make([]model.Entry, len(m.entries))
	copy(out, m.entries)
	SortNewest(out)
	return out
}
