package access

import (
	"context"
	"fmt"
	"log/slog"

	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
	"shelfgate/internal/domain/services"
)

// Deny reason classes. These go to the log line; the web layer never
// echoes them to unauthorized callers.
const (
	ReasonTenantMismatch = "tenant mismatch"
	ReasonAdminReserved  = "action reserved for administrators"
	ReasonInsufficient   = "insufficient privilege"
)

// Evaluator is the central access decision function. It is stateless: the
// only lookup it performs is the optional file ACL read, and concurrent
// evaluations never contend on shared memory.
type Evaluator struct {
	acl    repositories.FileACLLookup
	logger *slog.Logger
}

// NewEvaluator creates a permission evaluator.
func NewEvaluator(acl repositories.FileACLLookup, logger *slog.Logger) services.PermissionEvaluator {
	return &Evaluator{acl: acl, logger: logger}
}

// Authorize evaluates the fixed rule order; the first matching rule
// decides.
//
// Tenant isolation runs before every privilege check so a librarian or
// owner match can never leak across tenants. Admin-reserved actions are
// settled right after the admin bypass, before ownership: upgrading a
// principal's role must never turn an allow into a deny, and letting rule
// order reach the ownership match for purge would do exactly that for
// librarians. Role checks precede the ACL lookup because they are coarser
// and need no collaborator.
func (e *Evaluator) Authorize(ctx context.Context, principal *models.Principal, resource *models.Resource, action models.Action) (services.Decision, error) {
	primary := principal.PrimaryRole()

	// Rule 1: cross-tenant access is never permitted for non-admins, even
	// when ownership would otherwise allow it.
	if principal.Tenant != resource.Tenant && primary != models.RoleAdmin {
		e.deny(principal, resource, action, ReasonTenantMismatch)
		return services.Deny(ReasonTenantMismatch), nil
	}

	// Rule 2: administrators bypass tenant scoping and every later check.
	if primary == models.RoleAdmin {
		return services.Allow(), nil
	}

	// Rule 3: destructive actions reserved for administrators stay denied
	// for everyone else, librarians and owners included.
	if action.AdminOnly() {
		e.deny(principal, resource, action, ReasonAdminReserved)
		return services.Deny(ReasonAdminReserved), nil
	}

	// Rule 4: librarians act freely within their own tenant.
	if primary == models.RoleLibrarian {
		return services.Allow(), nil
	}

	// Rule 5: owners act on their own resources.
	if principal.Subject == resource.OwnerID {
		return services.Allow(), nil
	}

	// Rule 6: files only - a fine-grained ACL entry can grant the action
	// if the granted permission contains the required one.
	required, ok := action.RequiredPermission()
	if resource.Kind == models.KindFile && ok {
		granted, found, err := e.acl.Get(ctx, resource.ID, principal.Subject)
		if err != nil {
			return services.Decision{}, fmt.Errorf("acl lookup for file %d: %w", resource.ID, err)
		}
		if found && granted.Contains(required) {
			return services.Allow(), nil
		}
	}

	e.deny(principal, resource, action, ReasonInsufficient)
	return services.Deny(ReasonInsufficient), nil
}

func (e *Evaluator) deny(principal *models.Principal, resource *models.Resource, action models.Action, reason string) {
	e.logger.Info("access denied",
		"subject", principal.Subject,
		"principal_tenant", principal.Tenant,
		"resource_kind", resource.Kind,
		"resource_id", resource.ID,
		"action", action,
		"reason", reason,
	)
}
