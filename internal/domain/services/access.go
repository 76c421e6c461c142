package services

import (
	"context"

	"shelfgate/internal/domain/models"
)

// Decision is the outcome of an authorization check. Deny is a normal,
// expected branch, not an error: collaborator failures travel on the error
// return instead.
type Decision struct {
	Allowed bool
	Reason  string // deny reason class, for logging only
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with a reason class.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// PermissionEvaluator is the central access decision function. It is pure
// over its inputs plus at most one ACL lookup; it never mutates state.
type PermissionEvaluator interface {
	// Authorize decides whether the principal may perform the action on
	// the resource. The rule order is fixed: tenant isolation is checked
	// before any privilege so ownership or librarian grants can never
	// leak across tenants.
	Authorize(ctx context.Context, principal *models.Principal, resource *models.Resource, action models.Action) (Decision, error)
}
