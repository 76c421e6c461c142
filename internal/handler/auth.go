package handler

import (
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"shelfgate/internal/auth"
	"shelfgate/internal/domain/services"
	"shelfgate/internal/httputil"
)

// AuthHandler exchanges identity-provider tokens for session tokens and
// reports session liveness.
type AuthHandler struct {
	verifier auth.IdentityVerifier
	codec    *auth.Codec
	guard    services.SessionGuard
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAuthHandler(verifier auth.IdentityVerifier, codec *auth.Codec, guard services.SessionGuard, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		codec:    codec,
		guard:    guard,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

type loginRequest struct {
	Token string `json:"token"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login verifies an identity-provider token and issues a session token.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := h.verifier.Verify(req.Token)
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "identity verification failed")
		return
	}
	if identity.Subject == "" || identity.Tenant == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "identity missing subject or tenant")
		return
	}

	roles := auth.MapRoles(identity.Roles)
	token, err := h.codec.Issue(identity.Subject, roles, identity.Tenant, h.tokenTTL)
	if err != nil {
		h.logger.Error("token issue failed", "error", err, "user_id", identity.Subject)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.guard.MarkLogin(r.Context(), identity.Subject, identity.Tenant); err != nil {
		h.logger.Error("login mark failed", "error", err, "user_id", identity.Subject)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("login",
		"user_id", identity.Subject,
		"tenant", identity.Tenant,
		"roles", identity.Roles,
	)

	httputil.RespondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}

type sessionResponse struct {
	Status services.LivenessStatus `json:"status"`
}

// Session reports whether the caller's login is still within the
// liveness window. The probe uses an empty path so the guard's
// allow-list cannot mask a timed-out session.
// GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetPrincipal(r)
	if principal == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.guard.IsLive(r.Context(), principal.Subject, principal.Tenant, "")
	if err != nil {
		h.logger.Error("liveness check failed", "error", err, "user_id", principal.Subject)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sessionResponse{Status: status})
}
