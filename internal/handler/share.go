package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
	"shelfgate/internal/domain/services"
	"shelfgate/internal/httputil"
)

// ShareHandler manages anonymous share tokens: issuing, resolving,
// revoking, and the admin purge of dead rows.
type ShareHandler struct {
	shares    services.ShareService
	evaluator services.PermissionEvaluator
	resources repositories.ResourceLookup
	objects   services.ObjectStore
	logger    *slog.Logger
}

func NewShareHandler(shares services.ShareService, evaluator services.PermissionEvaluator, resources repositories.ResourceLookup, objects services.ObjectStore, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shares:    shares,
		evaluator: evaluator,
		resources: resources,
		objects:   objects,
		logger:    logger,
	}
}

type createShareRequest struct {
	Kind       string `json:"kind"`
	TargetID   int64  `json:"target_id"`
	TTLSeconds *int64 `json:"ttl_seconds"`
}

func (r createShareRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In("BUCKET", "FOLDER", "FILE")),
		validation.Field(&r.TargetID, validation.Required, validation.Min(1)),
		validation.Field(&r.TTLSeconds, validation.Min(int64(1))),
	)
}

type createShareResponse struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	Kind      string     `json:"kind"`
	TargetID  int64      `json:"target_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Create issues a share token for a resource the caller may share.
// The plaintext token appears in this response and nowhere else.
// POST /api/shares
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind := models.ResourceKind(req.Kind)
	resource, err := h.resources.Get(r.Context(), kind, req.TargetID)
	if err != nil {
		handleError(w, err)
		return
	}

	decision, err := h.evaluator.Authorize(r.Context(), principal, resource, models.ActionShare)
	if err != nil {
		handleError(w, err)
		return
	}
	if !decision.Allowed {
		handleError(w, &domain.ForbiddenError{Reason: decision.Reason})
		return
	}

	var ttl *time.Duration
	if req.TTLSeconds != nil {
		d := time.Duration(*req.TTLSeconds) * time.Second
		ttl = &d
	}

	// The share lives under the resource's tenant, not the caller's:
	// administrators may share across tenants, and the anonymous link is
	// resolved under the tenant that owns the target.
	share, plaintext, err := h.shares.Create(r.Context(), principal.Subject, resource.Tenant, kind, req.TargetID, ttl)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, createShareResponse{
		ID:        share.ID.String(),
		Token:     plaintext,
		Kind:      string(share.TargetKind),
		TargetID:  share.TargetID,
		ExpiresAt: share.ExpiresAt,
	})
}

type resolveShareResponse struct {
	Kind      string `json:"kind"`
	TargetID  int64  `json:"target_id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// Resolve looks up a share token and returns the target's metadata.
// Anonymous; all failure kinds collapse to 404.
// GET /api/shares/{tenant}/{token}
func (h *ShareHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	share, err := h.shares.Resolve(r.Context(), r.PathValue("token"), r.PathValue("tenant"))
	if err != nil {
		handleShareError(w, err)
		return
	}

	resource, err := h.resources.Get(r.Context(), share.TargetKind, share.TargetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The target was deleted after the share was issued.
			handleShareError(w, domain.ErrShareNotFound)
			return
		}
		handleError(w, err)
		return
	}
	if resource.DeletedAt != nil {
		handleShareError(w, domain.ErrShareNotFound)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resolveShareResponse{
		Kind:      string(resource.Kind),
		TargetID:  resource.ID,
		Name:      resource.Name,
		SizeBytes: resource.SizeBytes,
	})
}

// Download streams the bytes of a shared file. Only FILE shares have
// content; folder and bucket shares get 404 here.
// GET /api/shares/{tenant}/{token}/content
func (h *ShareHandler) Download(w http.ResponseWriter, r *http.Request) {
	share, err := h.shares.Resolve(r.Context(), r.PathValue("token"), r.PathValue("tenant"))
	if err != nil {
		handleShareError(w, err)
		return
	}
	if share.TargetKind != models.KindFile {
		httputil.RespondError(w, http.StatusNotFound, "share has no content")
		return
	}

	resource, err := h.resources.Get(r.Context(), models.KindFile, share.TargetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			handleShareError(w, domain.ErrShareNotFound)
			return
		}
		handleError(w, err)
		return
	}
	if resource.DeletedAt != nil {
		handleShareError(w, domain.ErrShareNotFound)
		return
	}

	body, err := h.objects.Get(r.Context(), resource.ObjectKey)
	if err != nil {
		h.logger.Error("object fetch failed", "error", err, "object_key", resource.ObjectKey)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+resource.Name+`"`)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("object stream failed", "error", err, "object_key", resource.ObjectKey)
	}
}

// Revoke disables a share. Allowed for the share's owner or an
// administrator.
// DELETE /api/shares/{token}
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.shares.Revoke(r.Context(), principal.Subject, principal.PrimaryRole(), r.PathValue("token"), principal.Tenant)
	if err != nil {
		handleShareError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type purgeSharesRequest struct {
	OlderThanSeconds int64 `json:"older_than_seconds"`
}

func (r purgeSharesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OlderThanSeconds, validation.Required, validation.Min(int64(1))),
	)
}

type purgeSharesResponse struct {
	Deleted int64 `json:"deleted"`
}

// PurgeDead permanently deletes disabled or expired shares older than
// the given age. Administrators only.
// POST /api/admin/shares/purge
func (h *ShareHandler) PurgeDead(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if principal.PrimaryRole() != models.RoleAdmin {
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req purgeSharesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.shares.PurgeDead(r.Context(), time.Duration(req.OlderThanSeconds)*time.Second)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("share purge",
		"deleted", deleted,
		"older_than_seconds", req.OlderThanSeconds,
		"admin", principal.Subject,
	)

	httputil.RespondJSON(w, http.StatusOK, purgeSharesResponse{Deleted: deleted})
}
