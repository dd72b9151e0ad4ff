package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/aggregate"
	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/ranking"
	"github.com/okian/tally/pkg/metrics"
)

// Summary is the aggregated dashboard view for one window.
type Summary struct {
	Window        aggregate.Window  `json:"window"`
	Consultant    string            `json:"consultant,omitempty"`
	PerConsultant []model.Aggregate `json:"perConsultant"`
	Total         model.Counts      `json:"total"`
	Ranking       []model.Aggregate `json:"ranking"`
	Status        Status            `json:"status"`
}

// Leaderboard is the team ranking for one window.
type Leaderboard struct {
	Window    aggregate.Window   `json:"window"`
	Standings []ranking.Standing `json:"standings"`
	Status    Status             `json:"status"`
}

// Summary aggregates the board for the window of mode around ref. A zero
// ref means today. A non-empty consultant restricts the view to that
// member. Results are memoized until the board changes.
func (s *Service) Summary(_ context.Context, mode aggregate.Mode, ref time.Time, consultant string) (Summary, error) {
	start := time.Now()
	defer func() { metrics.RecordSummaryLatency(metrics.Since(start)) }()

	if consultant != "" && !s.roster.Contains(consultant) {
		return Summary{}, fmt.Errorf("summary %q: %w", consultant, ErrUnknownConsultant)
	}
	if ref.IsZero() {
		ref = calendar.Today(s.now())
	}
	w := aggregate.NewWindow(mode, ref)

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := memoKey{version: s.version, window: w, filter: consultant}
	sum, ok := s.memo.get(key)
	metrics.RecordSummaryCache(ok)
	if !ok {
		res := aggregate.Compute(s.roster, s.entries, w, consultant)
		sum = Summary{
			Window:        w,
			Consultant:    consultant,
			PerConsultant: res.PerConsultant,
			Total:         res.Total,
			Ranking:       ranking.Rank(res.PerConsultant),
		}
		s.memo.put(key, sum)
	}
	sum.Status = s.statusLocked()
	return sum, nil
}

// Leaderboard ranks the whole team for the window of mode around ref.
func (s *Service) Leaderboard(ctx context.Context, mode aggregate.Mode, ref time.Time) (Leaderboard, error) {
	sum, err := s.Summary(ctx, mode, ref, "")
	if err != nil {
		return Leaderboard{}, err
	}
	return Leaderboard{
		Window:    sum.Window,
		Standings: ranking.Standings(sum.PerConsultant),
		Status:    sum.Status,
	}, nil
}

type memoKey struct {
	version uint64
	window  aggregate.Window
	filter  string
}

// memo caches summaries for a single board version.
type memo struct {
	mu      sync.Mutex
	version uint64
	items   map[memoKey]Summary
}

func newMemo() *memo {
	return &memo{items: make(map[memoKey]Summary)}
}

func (m *memo) get(k memoKey) (Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k.version != m.version {
		return Summary{}, false
	}
	v, ok := m.items[k]
	return v, ok
}

func (m *memo) put(k memoKey, v Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k.version != m.version || len(m.items) >= maxMemoEntries {
		m.version = k.version
		m.items = make(map[memoKey]Summary)
	}
	m.items[k] = v
}

func (m *memo) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
