package middleware

import (
	"log/slog"
	"net/http"

	"shelfgate/internal/domain/services"
	"shelfgate/internal/httputil"
)

// SessionLiveness rejects requests whose principal has not logged in
// within the guard's sliding window. Runs after AuthMiddleware; requests
// without a principal (public paths) pass through untouched. The guard
// itself short-circuits allow-listed paths to timein.
func SessionLiveness(guard services.SessionGuard, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := httputil.GetPrincipal(r)
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}

			status, err := guard.IsLive(r.Context(), principal.Subject, principal.Tenant, r.URL.Path)
			if err != nil {
				logger.Error("liveness check failed",
					"error", err,
					"user_id", principal.Subject,
					"path", r.URL.Path,
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if status == services.StatusTimeout {
				httputil.RespondError(w, http.StatusUnauthorized, "session expired")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
