package handler

import (
	"net/http"

	"shelfgate/internal/httputil"
)

// Health responds to load-balancer liveness probes.
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
