package models

import "time"

// ResourceKind identifies what kind of tenant-scoped object is being
// protected.
type ResourceKind string

const (
	KindBucket ResourceKind = "BUCKET"
	KindFolder ResourceKind = "FOLDER"
	KindFile   ResourceKind = "FILE"
)

// Valid reports whether k is a known resource kind.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindBucket, KindFolder, KindFile:
		return true
	}
	return false
}

// Permission is a fine-grained grant on a file. Grants are ordered by
// containment: DELETE implies WRITE and READ, WRITE implies READ.
type Permission string

const (
	PermissionRead   Permission = "READ"
	PermissionWrite  Permission = "WRITE"
	PermissionDelete Permission = "DELETE"
)

var permissionRank = map[Permission]int{
	PermissionRead:   1,
	PermissionWrite:  2,
	PermissionDelete: 3,
}

// Contains reports whether holding p is sufficient for required.
func (p Permission) Contains(required Permission) bool {
	pr, ok := permissionRank[p]
	rr, rok := permissionRank[required]
	return ok && rok && pr >= rr
}

// ParsePermission maps a permission string to the closed enumeration.
func ParsePermission(s string) (Permission, bool) {
	p := Permission(s)
	_, ok := permissionRank[p]
	return p, ok
}

// Action is what the caller wants to do to a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
	ActionShare  Action = "share"

	// ActionPurge permanently destroys records (bypassing soft delete).
	// Reserved for administrators.
	ActionPurge Action = "purge"
)

// RequiredPermission returns the ACL grant that satisfies the action, if
// any. Share and purge cannot be granted through file ACLs.
func (a Action) RequiredPermission() (Permission, bool) {
	switch a {
	case ActionRead:
		return PermissionRead, true
	case ActionWrite:
		return PermissionWrite, true
	case ActionDelete:
		return PermissionDelete, true
	}
	return "", false
}

// AdminOnly reports whether the action is reserved for administrators
// regardless of tenant, ownership, or ACL grants.
func (a Action) AdminOnly() bool {
	return a == ActionPurge
}

// Resource is the protected object an authorization decision is about.
// A resource belongs to exactly one tenant, and all of its ancestors (a
// file's folder, a folder's bucket) share that tenant. Tenant and owner
// never change after creation.
type Resource struct {
	Kind      ResourceKind
	ID        int64
	OwnerID   string
	Tenant    string
	Name      string
	SizeBytes int64      // files only
	ObjectKey string     // files only: key in the object store
	DeletedAt *time.Time // files only: soft-delete marker
}
