package middleware

import (
	"errors"
	"net/http"
	"strings"

	"shelfgate/internal/auth"
	"shelfgate/internal/httputil"
)

// publicPaths are reachable without a session token. Login is where
// tokens come from, share resolution is anonymous by design, and health
// checks must work for load balancers.
var publicPaths = map[string]struct{}{
	"/api/auth/login": {},
	"/health":         {},
}

// AuthMiddleware validates the Bearer session token and stores the
// decoded principal in the request context. Expired tokens get a
// distinct detail so clients can tell "log in again" from "bad token".
func AuthMiddleware(codec *auth.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			// Anonymous share resolution carries no token.
			if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/shares/") {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			principal, err := codec.Decode(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrExpired) {
					httputil.RespondError(w, http.StatusUnauthorized, "session expired")
					return
				}
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, principal))
		})
	}
}
