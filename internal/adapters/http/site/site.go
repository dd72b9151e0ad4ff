// Package site serves the embedded TV dashboard.
//
// The first paint is rendered on the server from the current summary so a
// freshly opened screen shows numbers immediately; the embedded script
// then refreshes from the JSON API and the live stream.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/aggregate"
	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/ranking"
	"github.com/okian/tally/pkg/logger"
)

// Error constants.
var (
	ErrRender = errors.New("dashboard render failed")
)

// Title is the dashboard heading.
const Title = "Performance Dashboard"

// Dependencies is what the first paint reads from the service.
type Dependencies interface {
	Summary(ctx context.Context, mode aggregate.Mode, ref time.Time, consultant string) (service.Summary, error)
	Leaderboard(ctx context.Context, mode aggregate.Mode, ref time.Time) (service.Leaderboard, error)
	Roster() []string
}

// Register attaches the dashboard page and its static assets to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("/", NewRootHandler(deps).HandleRoot)
}

// RootHandler renders the dashboard page.
type RootHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewRootHandler creates a new root handler.
func NewRootHandler(deps Dependencies) *RootHandler {
	return &RootHandler{deps: deps, log: logger.Named("site")}
}

type bar struct {
	Name    string
	Value   int
	Percent int
}

type page struct {
	Title      string
	Mode       string
	Date       string
	Consultant string
	Roster     []string
	Summary    service.Summary
	Standings  []ranking.Standing
	Placements []bar
	Intakes    []bar
}

// HandleRoot handles GET / with optional range, date and consultant
// query parameters. Other paths are not found.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	p, status, err := h.build(r)
	if err != nil {
		h.log.Warn(r.Context(), "dashboard request rejected", logger.Error(err))
		http.Error(w, err.Error(), status)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		h.log.Error(r.Context(), "dashboard render failed", logger.Error(err))
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (h *RootHandler) build(r *http.Request) (page, int, error) {
	q := r.URL.Query()
	mode, err := aggregate.ParseMode(q.Get("range"))
	if err != nil {
		return page{}, http.StatusBadRequest, err
	}
	var ref time.Time
	if d := strings.TrimSpace(q.Get("date")); d != "" {
		if ref, err = calendar.ParseDay(d); err != nil {
			return page{}, http.StatusBadRequest, err
		}
	}
	consultant := strings.TrimSpace(q.Get("consultant"))

	sum, err := h.deps.Summary(r.Context(), mode, ref, consultant)
	if err != nil {
		if errors.Is(err, service.ErrUnknownConsultant) {
			return page{}, http.StatusUnprocessableEntity, err
		}
		return page{}, http.StatusInternalServerError, fmt.Errorf("%w: %w", ErrRender, err)
	}
	lb, err := h.deps.Leaderboard(r.Context(), mode, ref)
	if err != nil {
		return page{}, http.StatusInternalServerError, fmt.Errorf("%w: %w", ErrRender, err)
	}

	date := ""
	if !ref.IsZero() {
		date = calendar.FormatDay(ref)
	}
	return page{
		Title:      Title,
		Mode:       string(mode),
		Date:       date,
		Consultant: consultant,
		Roster:     h.deps.Roster(),
		Summary:    sum,
		Standings:  lb.Standings,
		Placements: bars(sum.PerConsultant, func(c model.Counts) int { return c.Placements }),
		Intakes:    bars(sum.PerConsultant, func(c model.Counts) int { return c.Intakes }),
	}, http.StatusOK, nil
}

// bars scales one count per consultant against the largest value.
func bars(per []model.Aggregate, pick func(model.Counts) int) []bar {
	peak := 0
	for _, a := range per {
		if v := pick(a.Counts); v > peak {
			peak = v
		}
	}
	out := make([]bar, 0, len(per))
	for _, a := range per {
		v := pick(a.Counts)
		pct := 0
		if peak > 0 {
			pct = v * 100 / peak
		}
		out = append(out, bar{Name: a.Name, Value: v, Percent: pct})
	}
	return out
}

func medalSymbol(m ranking.Medal) string {
	switch m {
	case ranking.Gold:
		return "🥇"
	case ranking.Silver:
		return "🥈"
	case ranking.Bronze:
		return "🥉"
	default:
		return "🏁"
	}
}
