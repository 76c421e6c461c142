package handler

import (
	"errors"
	"net/http"

	"shelfgate/internal/domain"
	"shelfgate/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var quotaErr *domain.QuotaExceededError

	switch {
	case errors.As(err, &quotaErr):
		httputil.RespondErrorWithExtras(w, quotaErr.StatusCode(), quotaErr.Error(), map[string]interface{}{
			"remaining": quotaErr.Remaining,
			"requested": quotaErr.Requested,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrSessionExpired):
		httputil.RespondError(w, http.StatusUnauthorized, "session expired")
	case errors.Is(err, domain.ErrNotOwner):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		var httpErr domain.HTTPError
		if errors.As(err, &httpErr) {
			httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleShareError collapses the three share failure kinds into a single
// 404 so callers cannot probe whether a token once existed. The distinct
// errors still reach the audit log before this point.
func handleShareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrShareNotFound),
		errors.Is(err, domain.ErrShareExpired),
		errors.Is(err, domain.ErrShareDisabled):
		httputil.RespondError(w, http.StatusNotFound, "share not found")
	default:
		handleError(w, err)
	}
}
