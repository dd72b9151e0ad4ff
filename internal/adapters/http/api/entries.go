package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/gate"
	"github.com/okian/tally/internal/domain/model"
)

// SubmitDependencies stores entries and lists recent ones.
type SubmitDependencies interface {
	Submit(ctx context.Context, state gate.State, consultant string, date time.Time, form model.Form) (service.Receipt, error)
	Entries(ctx context.Context, limit int) []model.Entry
}

// rawCount accepts a JSON number, a JSON string or null, keeping the
// text as typed so coercion happens in one place.
type rawCount string

func (c *rawCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = rawCount(s)
	default:
		*c = rawCount(b)
	}
	return nil
}

type entryRequest struct {
	Consultant string   `json:"consultant"`
	Date       string   `json:"date"`
	Intakes    rawCount `json:"intakes"`
	Interviews rawCount `json:"interviews"`
	Placements rawCount `json:"placements"`
	Prospects  rawCount `json:"prospects"`
}

func (e entryRequest) validate() (time.Time, error) {
	if strings.TrimSpace(e.Consultant) == "" {
		return time.Time{}, errors.New("missing consultant")
	}
	if strings.TrimSpace(e.Date) == "" {
		return time.Time{}, nil
	}
	return calendar.ParseDay(e.Date)
}

func (e entryRequest) form() model.Form {
	return model.Form{
		Intakes:    string(e.Intakes),
		Interviews: string(e.Interviews),
		Placements: string(e.Placements),
		Prospects:  string(e.Prospects),
	}
}

type entriesResponse struct {
	Entries []model.Entry `json:"entries"`
	Count   int           `json:"count"`
}

// EntriesHandler handles submissions and raw entry listing.
type EntriesHandler struct {
	deps     SubmitDependencies
	keeper   GateKeeper
	maxLimit int
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps SubmitDependencies, keeper GateKeeper, maxLimit int) *EntriesHandler {
	return &EntriesHandler{deps: deps, keeper: keeper, maxLimit: maxLimit}
}

// HandleEntries handles POST and GET /api/entries.
func (h *EntriesHandler) HandleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *EntriesHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_entry"

	// The gate is checked before the body is even read.
	state := h.keeper.State(r.Context(), sessionToken(r))
	if state != gate.Unlocked {
		fail(w, wrap(op, service.ErrNotAuthorized))
		return
	}

	var req entryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		fail(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	date, err := req.validate()
	if err != nil {
		fail(w, wrapKind(op, ErrBadRequest, err))
		return
	}

	receipt, err := h.deps.Submit(r.Context(), state, strings.TrimSpace(req.Consultant), date, req.form())
	if err != nil {
		fail(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *EntriesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_entries"
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			fail(w, wrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		if h.maxLimit > 0 && n > h.maxLimit {
			fail(w, wrapKind(op, ErrBadRequest, errors.New("limit exceeds maximum of "+strconv.Itoa(h.maxLimit))))
			return
		}
		limit = n
	}
	entries := h.deps.Entries(r.Context(), limit)
	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries, Count: len(entries)})
}
