package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/admin-dashboard-api/internal/domain"
)

// httpError maps domain sentinels to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// clientMessage drops the trailing sentinel text from a wrapped client error.
func clientMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+domain.ErrBadRequest.Error())
}
