package http

import (
	"errors"
	"net/http"

	"casalgastos/internal/core"
	"casalgastos/internal/session"
)

// statusFor maps a session or ledger error to the response status.
func statusFor(err error) int {
	var ve *core.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrStale):
		return http.StatusNoContent
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, core.ErrSessionMissing):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAccessDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
