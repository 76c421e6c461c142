package models

import "time"

// Role is the closed set of roles a principal can hold. Roles form a total
// order for coarse-grained decisions: ADMIN > LIBRARIAN > READER.
type Role string

const (
	RoleReader    Role = "READER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// rolePriority gives the total order used to derive the primary role.
// Unknown roles rank below READER and never win.
var rolePriority = map[Role]int{
	RoleAdmin:     3,
	RoleLibrarian: 2,
	RoleReader:    1,
}

// Priority returns the role's rank in the total order, 0 for unknown roles.
func (r Role) Priority() int {
	return rolePriority[r]
}

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	return rolePriority[r] > 0
}

// ParseRole maps a role string to the closed enumeration.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// PrimaryRole returns the highest-priority role in the set. An empty or
// entirely unknown set defaults to READER, the least-privileged role.
func PrimaryRole(roles []Role) Role {
	primary := RoleReader
	best := 0
	for _, r := range roles {
		if p := r.Priority(); p > best {
			best = p
			primary = r
		}
	}
	return primary
}

// Principal is the authenticated actor for a single request. It is built
// fresh from a decoded token on every request, never persisted, and not
// mutated after construction.
type Principal struct {
	Subject   string
	Roles     []Role
	Tenant    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PrimaryRole derives the single role used for coarse-grained decisions.
func (p *Principal) PrimaryRole() Role {
	return PrimaryRole(p.Roles)
}
