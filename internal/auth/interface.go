package auth

// ExternalIdentity is a verified identity from the federated provider:
// the subject and role claims this core consumes, nothing more.
type ExternalIdentity struct {
	Subject string
	Email   string
	Tenant  string
	Roles   []string // raw provider role claims, mapped by the caller
}

// IdentityVerifier verifies tokens minted by the external identity
// provider. This abstraction keeps the login handler agnostic to how the
// provider publishes its keys.
type IdentityVerifier interface {
	// Verify validates a provider token and returns the extracted
	// identity, or an error if the token is invalid.
	Verify(tokenString string) (*ExternalIdentity, error)

	// Close releases any resources held by the verifier (e.g. HTTP
	// connections for JWKS refresh).
	Close() error
}
