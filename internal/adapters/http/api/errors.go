package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/aggregate"
	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/gate"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNoStreaming = errors.New("streaming unsupported")
	ErrHubClosed   = errors.New("stream hub closed")
)

// wrap prefixes err with the handler operation.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// wrapKind tags err with a sentinel kind and the handler operation.
func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotAuthorized), errors.Is(err, gate.ErrWrongCode):
		return http.StatusUnauthorized, "not_authorized"
	case errors.Is(err, service.ErrUnknownConsultant):
		return http.StatusUnprocessableEntity, "unknown_consultant"
	case errors.Is(err, service.ErrPersistence):
		return http.StatusBadGateway, "persistence_failed"
	case errors.Is(err, service.ErrLoad), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "load_failed"
	case errors.Is(err, ErrBadRequest), errors.Is(err, aggregate.ErrUnknownMode), errors.Is(err, calendar.ErrInvalidDay):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with the status picked by classify.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
