package handler

import (
	"log/slog"
	"net/http"

	"shelfgate/internal/domain/services"
	"shelfgate/internal/httputil"
)

// QuotaHandler exposes the caller's storage quota.
type QuotaHandler struct {
	quotas services.QuotaService
	logger *slog.Logger
}

func NewQuotaHandler(quotas services.QuotaService, logger *slog.Logger) *QuotaHandler {
	return &QuotaHandler{
		quotas: quotas,
		logger: logger,
	}
}

// Get returns used, max, and remaining bytes for the caller. Max and
// remaining are -1 for unlimited roles.
// GET /api/quota
func (h *QuotaHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	info, err := h.quotas.Info(r.Context(), principal.Subject, principal.Tenant, principal.PrimaryRole())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, info)
}
