package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/tally/internal/domain/gate"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// SessionCookie names the cookie carrying the session token.
const SessionCookie = "tally_session"

const (
	sessionHeader = "X-Session-Token"
	bearerPrefix  = "Bearer "
	maxBodyBytes  = 1 << 16
)

type unlockRequest struct {
	Code string `json:"code"`
}

type sessionResponse struct {
	State string `json:"state"`
	Token string `json:"token,omitempty"`
}

// SessionHandler unlocks and locks the entry form.
type SessionHandler struct {
	keeper GateKeeper
	log    logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(keeper GateKeeper) *SessionHandler {
	return &SessionHandler{keeper: keeper, log: logger.Named("session")}
}

// HandleSession handles GET, POST and DELETE /api/session.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		state := h.keeper.State(r.Context(), sessionToken(r))
		writeJSON(w, http.StatusOK, sessionResponse{State: state.String()})
	case http.MethodPost:
		h.unlock(w, r)
	case http.MethodDelete:
		h.lock(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *SessionHandler) unlock(w http.ResponseWriter, r *http.Request) {
	const op = "api.unlock"
	var req unlockRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		fail(w, wrapKind(op, ErrBadRequest, err))
		return
	}

	token, err := h.keeper.Unlock(r.Context(), req.Code)
	metrics.RecordUnlockAttempt(err == nil)
	metrics.UpdateActiveSessions(int(h.keeper.Sessions()))
	if err != nil {
		if errors.Is(err, gate.ErrWrongCode) {
			h.log.Info(r.Context(), "unlock rejected")
		}
		fail(w, wrap(op, err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, sessionResponse{State: gate.Unlocked.String(), Token: token})
}

func (h *SessionHandler) lock(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		h.keeper.Lock(r.Context(), token)
	}
	metrics.UpdateActiveSessions(int(h.keeper.Sessions()))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, sessionResponse{State: gate.Locked.String()})
}

// sessionToken reads the token from the session cookie, the session
// header or a bearer Authorization header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if t := strings.TrimSpace(r.Header.Get(sessionHeader)); t != "" {
		return t
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
	}
	return ""
}
