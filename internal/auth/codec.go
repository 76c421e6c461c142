package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shelfgate/internal/domain/models"
)

// Token decode failures. Signature problems and expiry are distinct so the
// web layer can answer "please sign in" vs "session expired", but both
// leave the request unauthenticated.
var (
	ErrMalformed = errors.New("token malformed")
	ErrSignature = errors.New("token signature invalid")
	ErrExpired   = errors.New("token expired")
)

// SessionClaims is the fixed claim struct carried by session tokens.
// Claims are versioned by shape, not by a dynamic map: a decode failure is
// a type error, not a missing-key lookup.
type SessionClaims struct {
	jwt.RegisteredClaims
	Roles       []string `json:"roles"`
	Tenant      string   `json:"tenant"`
	PrimaryRole string   `json:"primary_role"`
}

// Codec issues and verifies HMAC-signed session tokens. Decoding never
// mutates state; no claim is trusted before the signature verifies.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCodec creates a token codec signing with the given secret.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret cannot be empty")
	}
	return &Codec{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue produces a signed token embedding subject, roles (order
// preserved), tenant, and the derived primary role. Expiry is now + ttl;
// ttl must be positive so every token satisfies issuedAt < expiresAt.
func (c *Codec) Issue(subject string, roles []models.Role, tenant string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := c.now()

	roleStrings := make([]string, len(roles))
	for i, r := range roles {
		roleStrings[i] = string(r)
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles:       roleStrings,
		Tenant:      tenant,
		PrimaryRole: string(models.PrimaryRole(roles)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies the token and reconstructs the request Principal.
// Returns ErrExpired past the expiry, ErrSignature when the signature does
// not verify, and ErrMalformed for everything that never was a token.
func (c *Codec) Decode(tokenString string) (*models.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" || claims.Tenant == "" {
		return nil, ErrMalformed
	}

	roles := make([]models.Role, 0, len(claims.Roles))
	for _, s := range claims.Roles {
		if r, valid := models.ParseRole(s); valid {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		// The role set is non-empty by invariant; a token carrying only
		// unknown roles degrades to the least privilege.
		roles = []models.Role{models.RoleReader}
	}

	principal := &models.Principal{
		Subject: claims.Subject,
		Roles:   roles,
		Tenant:  claims.Tenant,
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}
