package api

import (
	"context"
	"net/http"

	service "github.com/okian/tally/internal/app"
)

// ReloadDependencies refetches the board from the store.
type ReloadDependencies interface {
	Reload(ctx context.Context) error
	Status() service.Status
}

// ReloadHandler handles manual reloads after a load failure.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /api/reload.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.deps.Reload(r.Context()); err != nil {
		fail(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Status())
}
