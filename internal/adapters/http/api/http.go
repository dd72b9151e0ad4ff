// Package api declares the HTTP contracts and route registration of the
// dashboard service.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tally/internal/domain/gate"
)

// Dependencies bundles everything the handlers need from the service.
type Dependencies interface {
	SubmitDependencies
	SummaryDependencies
	RosterDependencies
	ReloadDependencies
	HealthDependencies
	StatsProvider
}

// GateKeeper checks access codes and session tokens.
type GateKeeper interface {
	Unlock(ctx context.Context, code string) (string, error)
	Lock(ctx context.Context, token string)
	State(ctx context.Context, token string) gate.State
	Sessions() int64
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	sessionHandler     *SessionHandler
	entriesHandler     *EntriesHandler
	summaryHandler     *SummaryHandler
	leaderboardHandler *LeaderboardHandler
	rosterHandler      *RosterHandler
	reloadHandler      *ReloadHandler
	streamHandler      *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, keeper GateKeeper, hub *Hub, maxEntriesLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		sessionHandler:     NewSessionHandler(keeper),
		entriesHandler:     NewEntriesHandler(deps, keeper, maxEntriesLimit),
		summaryHandler:     NewSummaryHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		rosterHandler:      NewRosterHandler(deps),
		reloadHandler:      NewReloadHandler(deps),
		streamHandler:      NewStreamHandler(hub),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/session", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))
	mux.HandleFunc("/api/entries", MetricsMiddleware(s.entriesHandler.HandleEntries, "entries"))
	mux.HandleFunc("/api/summary", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "summary"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/roster", MetricsMiddleware(s.rosterHandler.HandleGetRoster, "roster"))
	mux.HandleFunc("/api/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
	mux.HandleFunc("/api/stream", MetricsMiddleware(s.streamHandler.HandleStream, "stream"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// methodNotAllowed answers a request whose method the route does not serve.
func methodNotAllowed(w http.ResponseWriter, allow ...string) {
	for _, m := range allow {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
