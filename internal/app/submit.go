package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/gate"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

const idSuffixLen = 8

// Receipt is the outcome of a successful submission.
type Receipt struct {
	Entry     model.Entry `json:"entry"`
	Celebrate bool        `json:"celebrate"`
}

// Submit validates and stores one activity entry. Locked callers never
// reach the store. Raw counts are coerced, never rejected. A zero date
// means today. On store failure the board is left untouched.
func (s *Service) Submit(ctx context.Context, state gate.State, consultant string, date time.Time, form model.Form) (Receipt, error) {
	if state != gate.Unlocked {
		metrics.RecordSubmission("locked")
		return Receipt{}, ErrNotAuthorized
	}
	if !s.roster.Contains(consultant) {
		metrics.RecordSubmission("unknown_consultant")
		return Receipt{}, fmt.Errorf("submit %q: %w", consultant, ErrUnknownConsultant)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	day := calendar.Today(now)
	if !date.IsZero() {
		day = calendar.Day(date)
	}
	period := calendar.Bucket(day)
	counts := form.Counts()

	e := model.Entry{
		ID:         newEntryID(consultant, now),
		Name:       consultant,
		Date:       day,
		Week:       period.Week,
		Month:      period.Month,
		Year:       period.Year,
		Intakes:    counts.Intakes,
		Interviews: counts.Interviews,
		Placements: counts.Placements,
		Prospects:  counts.Prospects,
		CreatedAt:  now,
	}

	if err := s.store.Append(ctx, e); err != nil {
		metrics.RecordSubmission("store_error")
		metrics.RecordErrorByComponent("store", "append")
		s.logger.Error(ctx, "append failed",
			logger.String("consultant", consultant),
			logger.Error(err),
		)
		return Receipt{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	s.mergeLocked(e)
	version := s.version
	s.mu.Unlock()

	r := Receipt{Entry: e, Celebrate: e.Placements > 0}

	metrics.RecordSubmission("ok")
	metrics.RecordActivity(e.Name, e.Intakes, e.Interviews, e.Placements, e.Prospects)
	if r.Celebrate {
		metrics.RecordCelebration()
	}
	s.notify(ctx, model.Notice{Kind: model.NoticeEntry, Entry: &r.Entry, Celebrate: r.Celebrate, Version: version})
	s.logger.Info(ctx, "entry stored",
		logger.String("id", e.ID),
		logger.String("consultant", e.Name),
		logger.String("period", period.String()),
		logger.Int("placements", e.Placements),
	)
	return r, nil
}

// newEntryID combines the submission time, the consultant name without
// whitespace and a random suffix.
func newEntryID(name string, at time.Time) string {
	compact := strings.Join(strings.Fields(name), "")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLen]
	return fmt.Sprintf("entry-%d-%s-%s", at.UnixMilli(), compact, suffix)
}
