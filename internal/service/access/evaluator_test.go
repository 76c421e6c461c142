package access

import (
	"context"
	"log/slog"
	"testing"

	"shelfgate/internal/domain/models"
)

// fakeACL returns a fixed grant table keyed by (fileID, userID).
type fakeACL struct {
	grants map[int64]map[string]models.Permission
}

func (f *fakeACL) Get(_ context.Context, fileID int64, userID string) (models.Permission, bool, error) {
	p, ok := f.grants[fileID][userID]
	return p, ok, nil
}

func newEvaluator(grants map[int64]map[string]models.Permission) *Evaluator {
	return &Evaluator{
		acl:    &fakeACL{grants: grants},
		logger: slog.New(slog.DiscardHandler),
	}
}

func principal(subject, tenant string, roles ...models.Role) *models.Principal {
	return &models.Principal{Subject: subject, Tenant: tenant, Roles: roles}
}

func file(id int64, owner, tenant string) *models.Resource {
	return &models.Resource{Kind: models.KindFile, ID: id, OwnerID: owner, Tenant: tenant}
}

func TestAuthorize(t *testing.T) {
	grants := map[int64]map[string]models.Permission{
		7: {
			"u-acl-read":   models.PermissionRead,
			"u-acl-write":  models.PermissionWrite,
			"u-acl-delete": models.PermissionDelete,
		},
	}
	ev := newEvaluator(grants)

	tests := []struct {
		name      string
		principal *models.Principal
		resource  *models.Resource
		action    models.Action
		allowed   bool
		reason    string
	}{
		{
			name:      "reader denied on another user's file without acl",
			principal: principal("u1", "LIB1", models.RoleReader),
			resource:  file(9, "u2", "LIB1"),
			action:    models.ActionRead,
			allowed:   false,
			reason:    ReasonInsufficient,
		},
		{
			name:      "owner denied across tenants",
			principal: principal("u1", "LIB1", models.RoleReader),
			resource:  file(9, "u1", "LIB2"),
			action:    models.ActionRead,
			allowed:   false,
			reason:    ReasonTenantMismatch,
		},
		{
			name:      "librarian denied across tenants",
			principal: principal("lib", "LIB1", models.RoleLibrarian),
			resource:  file(9, "u2", "LIB2"),
			action:    models.ActionWrite,
			allowed:   false,
			reason:    ReasonTenantMismatch,
		},
		{
			name:      "admin bypasses tenant scoping",
			principal: principal("root", "LIB1", models.RoleAdmin),
			resource:  file(9, "u2", "LIB2"),
			action:    models.ActionDelete,
			allowed:   true,
		},
		{
			name:      "admin may purge",
			principal: principal("root", "LIB1", models.RoleAdmin),
			resource:  file(9, "u2", "LIB1"),
			action:    models.ActionPurge,
			allowed:   true,
		},
		{
			name:      "librarian allowed within tenant",
			principal: principal("lib", "LIB1", models.RoleLibrarian),
			resource:  file(9, "u2", "LIB1"),
			action:    models.ActionDelete,
			allowed:   true,
		},
		{
			name:      "librarian denied admin-reserved purge",
			principal: principal("lib", "LIB1", models.RoleLibrarian),
			resource:  file(9, "u2", "LIB1"),
			action:    models.ActionPurge,
			allowed:   false,
			reason:    ReasonAdminReserved,
		},
		{
			name:      "owner denied admin-reserved purge",
			principal: principal("u1", "LIB1", models.RoleReader),
			resource:  file(9, "u1", "LIB1"),
			action:    models.ActionPurge,
			allowed:   false,
			reason:    ReasonAdminReserved,
		},
		{
			name:      "owner allowed on own resource",
			principal: principal("u1", "LIB1", models.RoleReader),
			resource:  file(9, "u1", "LIB1"),
			action:    models.ActionDelete,
			allowed:   true,
		},
		{
			name:      "owner allowed on own bucket",
			principal: principal("u1", "LIB1", models.RoleReader),
			resource:  &models.Resource{Kind: models.KindBucket, ID: 3, OwnerID: "u1", Tenant: "LIB1"},
			action:    models.ActionWrite,
			allowed:   true,
		},
		{
			name:      "acl read grant allows read",
			principal: principal("u-acl-read", "LIB1", models.RoleReader),
			resource:  file(7, "u2", "LIB1"),
			action:    models.ActionRead,
			allowed:   true,
		},
		{
			name:      "acl read grant denies write",
			principal: principal("u-acl-read", "LIB1", models.RoleReader),
			resource:  file(7, "u2", "LIB1"),
			action:    models.ActionWrite,
			allowed:   false,
			reason:    ReasonInsufficient,
		},
		{
			name:      "acl write grant contains read",
			principal: principal("u-acl-write", "LIB1", models.RoleReader),
			resource:  file(7, "u2", "LIB1"),
			action:    models.ActionRead,
			allowed:   true,
		},
		{
			name:      "acl delete grant contains write",
			principal: principal("u-acl-delete", "LIB1", models.RoleReader),
			resource:  file(7, "u2", "LIB1"),
			action:    models.ActionWrite,
			allowed:   true,
		},
		{
			name:      "acl never consulted for folders",
			principal: principal("u-acl-read", "LIB1", models.RoleReader),
			resource:  &models.Resource{Kind: models.KindFolder, ID: 7, OwnerID: "u2", Tenant: "LIB1"},
			action:    models.ActionRead,
			allowed:   false,
			reason:    ReasonInsufficient,
		},
		{
			name:      "acl grant useless across tenants",
			principal: principal("u-acl-delete", "LIB1", models.RoleReader),
			resource:  file(7, "u2", "LIB2"),
			action:    models.ActionRead,
			allowed:   false,
			reason:    ReasonTenantMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := ev.Authorize(context.Background(), tt.principal, tt.resource, tt.action)
			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if decision.Allowed != tt.allowed {
				t.Errorf("Authorize() allowed = %v, want %v", decision.Allowed, tt.allowed)
			}
			if !tt.allowed && decision.Reason != tt.reason {
				t.Errorf("Authorize() reason = %q, want %q", decision.Reason, tt.reason)
			}
		})
	}
}

// Upgrading a principal's role must never turn an allow into a deny.
func TestRoleMonotonicity(t *testing.T) {
	ev := newEvaluator(map[int64]map[string]models.Permission{
		7: {"u1": models.PermissionRead},
	})

	resources := []*models.Resource{
		file(7, "u2", "LIB1"),
		file(9, "u1", "LIB1"),
		{Kind: models.KindFolder, ID: 2, OwnerID: "u2", Tenant: "LIB1"},
	}
	actions := []models.Action{models.ActionRead, models.ActionWrite, models.ActionDelete, models.ActionShare}
	ladder := [][]models.Role{
		{models.RoleReader},
		{models.RoleLibrarian},
		{models.RoleAdmin},
	}

	for _, res := range resources {
		for _, action := range actions {
			prev := false
			for _, roles := range ladder {
				d, err := ev.Authorize(context.Background(), principal("u1", "LIB1", roles...), res, action)
				if err != nil {
					t.Fatalf("Authorize() error = %v", err)
				}
				if prev && !d.Allowed {
					t.Errorf("role upgrade to %v revoked %s on %s %d", roles, action, res.Kind, res.ID)
				}
				prev = prev || d.Allowed
			}
		}
	}
}
