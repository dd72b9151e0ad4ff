package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/aggregate"
	"github.com/okian/tally/internal/domain/calendar"
)

// SummaryDependencies computes aggregated views.
type SummaryDependencies interface {
	Summary(ctx context.Context, mode aggregate.Mode, ref time.Time, consultant string) (service.Summary, error)
	Leaderboard(ctx context.Context, mode aggregate.Mode, ref time.Time) (service.Leaderboard, error)
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /api/summary?range=&date=&consultant=.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	mode, ref, err := windowQuery(r)
	if err != nil {
		fail(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	sum, err := h.deps.Summary(r.Context(), mode, ref, strings.TrimSpace(r.URL.Query().Get("consultant")))
	if err != nil {
		fail(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// windowQuery reads the range and date query parameters. A missing date
// is returned as the zero time.
func windowQuery(r *http.Request) (aggregate.Mode, time.Time, error) {
	q := r.URL.Query()
	mode, err := aggregate.ParseMode(q.Get("range"))
	if err != nil {
		return "", time.Time{}, err
	}
	var ref time.Time
	if d := strings.TrimSpace(q.Get("date")); d != "" {
		if ref, err = calendar.ParseDay(d); err != nil {
			return "", time.Time{}, err
		}
	}
	return mode, ref, nil
}
