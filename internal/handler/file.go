package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
	"shelfgate/internal/domain/services"
	"shelfgate/internal/httputil"
)

// FileHandler gates file uploads, downloads, and deletion through the
// permission evaluator and the quota tracker. Bytes travel as raw
// request and response bodies; metadata lives in the files table.
type FileHandler struct {
	evaluator services.PermissionEvaluator
	quotas    services.QuotaService
	resources repositories.ResourceLookup
	files     repositories.FileWriter
	objects   services.ObjectStore
	logger    *slog.Logger
}

func NewFileHandler(evaluator services.PermissionEvaluator, quotas services.QuotaService, resources repositories.ResourceLookup, files repositories.FileWriter, objects services.ObjectStore, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		evaluator: evaluator,
		quotas:    quotas,
		resources: resources,
		files:     files,
		objects:   objects,
		logger:    logger,
	}
}

type fileResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

// Upload stores a file's bytes and registers its metadata. The quota
// gate runs before any bytes reach the object store, so a rejected
// upload never leaves an orphaned object.
// POST /api/folders/{id}/files?name=...
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	folderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid folder id")
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	size := r.ContentLength
	if size < 0 {
		httputil.RespondError(w, http.StatusLengthRequired, "content length required")
		return
	}

	folder, err := h.resources.Get(r.Context(), models.KindFolder, folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	decision, err := h.evaluator.Authorize(r.Context(), principal, folder, models.ActionWrite)
	if err != nil {
		handleError(w, err)
		return
	}
	if !decision.Allowed {
		handleError(w, &domain.ForbiddenError{Reason: decision.Reason})
		return
	}

	role := principal.PrimaryRole()
	ok, err := h.quotas.CanUpload(r.Context(), principal.Subject, principal.Tenant, role, size)
	if err != nil {
		handleError(w, err)
		return
	}
	if !ok {
		remaining, err := h.quotas.Remaining(r.Context(), principal.Subject, principal.Tenant, role)
		if err != nil {
			handleError(w, err)
			return
		}
		handleError(w, &domain.QuotaExceededError{Remaining: remaining, Requested: size})
		return
	}

	objectKey := principal.Tenant + "/" + uuid.New().String()
	if err := h.objects.Put(r.Context(), objectKey, r.Body, size); err != nil {
		h.logger.Error("object put failed", "error", err, "object_key", objectKey)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	file := &models.Resource{
		Kind:      models.KindFile,
		OwnerID:   principal.Subject,
		Tenant:    principal.Tenant,
		Name:      name,
		SizeBytes: size,
		ObjectKey: objectKey,
	}
	if err := h.files.Register(r.Context(), file); err != nil {
		// Roll back the orphaned object so quota accounting stays honest.
		if delErr := h.objects.Delete(r.Context(), objectKey); delErr != nil {
			h.logger.Error("orphan cleanup failed", "error", delErr, "object_key", objectKey)
		}
		handleError(w, err)
		return
	}

	h.quotas.Invalidate(principal.Subject, principal.Tenant)

	h.logger.Info("file uploaded",
		"file_id", file.ID,
		"size_bytes", size,
		"user_id", principal.Subject,
		"tenant", principal.Tenant,
	)

	httputil.RespondJSON(w, http.StatusCreated, fileResponse{
		ID:        file.ID,
		Name:      file.Name,
		SizeBytes: file.SizeBytes,
	})
}

// Download streams a file's bytes to an authorized caller.
// GET /api/files/{id}
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	_, file, ok := h.authorizeFile(w, r, models.ActionRead)
	if !ok {
		return
	}

	body, err := h.objects.Get(r.Context(), file.ObjectKey)
	if err != nil {
		h.logger.Error("object fetch failed", "error", err, "object_key", file.ObjectKey)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("object stream failed", "error", err, "object_key", file.ObjectKey)
	}
}

// Delete soft-deletes a file. The row and the object's bytes survive;
// only an administrator purge removes them for good.
// DELETE /api/files/{id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, file, ok := h.authorizeFile(w, r, models.ActionDelete)
	if !ok {
		return
	}

	if err := h.files.SoftDelete(r.Context(), file.ID); err != nil {
		handleError(w, err)
		return
	}

	h.quotas.Invalidate(file.OwnerID, file.Tenant)

	h.logger.Info("file deleted",
		"file_id", file.ID,
		"user_id", principal.Subject,
	)

	w.WriteHeader(http.StatusNoContent)
}

// Purge permanently removes a file's row and its object bytes.
// Administrators only; the evaluator rejects everyone else.
// DELETE /api/files/{id}/purge
func (h *FileHandler) Purge(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	// Soft-deleted rows stay purgeable, so no DeletedAt check here.
	file, err := h.resources.Get(r.Context(), models.KindFile, fileID)
	if err != nil {
		handleError(w, err)
		return
	}

	decision, err := h.evaluator.Authorize(r.Context(), principal, file, models.ActionPurge)
	if err != nil {
		handleError(w, err)
		return
	}
	if !decision.Allowed {
		handleError(w, &domain.ForbiddenError{Reason: decision.Reason})
		return
	}

	if err := h.files.Purge(r.Context(), file.ID); err != nil {
		handleError(w, err)
		return
	}
	if err := h.objects.Delete(r.Context(), file.ObjectKey); err != nil {
		// The row is gone; log the stray object for operator cleanup.
		h.logger.Error("object delete failed after purge", "error", err, "object_key", file.ObjectKey)
	}

	h.quotas.Invalidate(file.OwnerID, file.Tenant)

	h.logger.Info("file purged",
		"file_id", file.ID,
		"admin", principal.Subject,
	)

	w.WriteHeader(http.StatusNoContent)
}

// authorizeFile resolves the file, hides soft-deleted rows, and runs the
// evaluator. On failure the response is already written.
func (h *FileHandler) authorizeFile(w http.ResponseWriter, r *http.Request, action models.Action) (*models.Principal, *models.Resource, bool) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil, false
	}

	fileID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid file id")
		return nil, nil, false
	}

	file, err := h.resources.Get(r.Context(), models.KindFile, fileID)
	if err != nil {
		handleError(w, err)
		return nil, nil, false
	}
	if file.DeletedAt != nil {
		httputil.RespondError(w, http.StatusNotFound, "not found")
		return nil, nil, false
	}

	decision, err := h.evaluator.Authorize(r.Context(), principal, file, action)
	if err != nil {
		handleError(w, err)
		return nil, nil, false
	}
	if !decision.Allowed {
		handleError(w, &domain.ForbiddenError{Reason: decision.Reason})
		return nil, nil, false
	}

	return principal, file, true
}
