package api

import (
	"net/http"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps SummaryDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps SummaryDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /api/leaderboard?range=&date=.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	mode, ref, err := windowQuery(r)
	if err != nil {
		fail(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	lb, err := h.deps.Leaderboard(r.Context(), mode, ref)
	if err != nil {
		fail(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, lb)
}
