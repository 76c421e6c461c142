package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
)

// externalClaims is the shape of the identity provider's tokens. Tenant
// and roles arrive as custom claims alongside the registered set.
type externalClaims struct {
	jwt.RegisteredClaims
	Email  string   `json:"email"`
	Tenant string   `json:"tenant"`
	Roles  []string `json:"roles"`
}

// JWKSVerifier implements IdentityVerifier using the provider's JWKS
// endpoint. Keys are cached and refreshed by keyfunc based on HTTP cache
// headers.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier fetching public keys from the given
// JWKS URL.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}

	logger.Info("identity verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// Verify validates a provider token and extracts the external identity.
func (v *JWKSVerifier) Verify(tokenString string) (*ExternalIdentity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &externalClaims{}, v.jwks.Keyfunc)
	if err != nil || !token.Valid {
		v.logger.Debug("provider token rejected", "error", err)
		return nil, domain.ErrUnauthenticated
	}

	// Prevent algorithm confusion: only asymmetric provider algorithms.
	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("provider token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*externalClaims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	if claims.Tenant == "" {
		v.logger.Debug("provider token missing tenant claim", "subject", claims.Subject)
		return nil, domain.ErrUnauthenticated
	}

	return &ExternalIdentity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Tenant:  claims.Tenant,
		Roles:   claims.Roles,
	}, nil
}

// Close is a no-op for graceful-shutdown compatibility; keyfunc manages
// its own refresh lifecycle.
func (v *JWKSVerifier) Close() error {
	return nil
}

// MapRoles converts provider role claims to the closed role enumeration.
// Legacy "ROLE_"-prefixed authorities are accepted at this boundary only;
// everything past it works on the enum. Unknown claims are dropped, and an
// empty result degrades to READER.
func MapRoles(raw []string) []models.Role {
	roles := make([]models.Role, 0, len(raw))
	for _, s := range raw {
		name := strings.TrimPrefix(strings.ToUpper(s), "ROLE_")
		if r, ok := models.ParseRole(name); ok {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = append(roles, models.RoleReader)
	}
	return roles
}
