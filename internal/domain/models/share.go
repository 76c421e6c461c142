package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareToken is an anonymous, time-bounded capability granting access to
// exactly one resource. Only the one-way hash of the plaintext token is
// persisted; the plaintext is shown to the creator once and never stored.
type ShareToken struct {
	ID         uuid.UUID
	TokenHash  string
	TargetKind ResourceKind
	TargetID   int64
	Tenant     string
	OwnerID    string
	ExpiresAt  *time.Time // nil means the share never expires
	Enabled    bool
	CreatedAt  time.Time
}

// ValidAt applies the validity invariant: a share is usable iff it is
// enabled and either has no expiry or has not yet expired.
func (s *ShareToken) ValidAt(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

// Expired reports whether the share has an expiry in the past.
func (s *ShareToken) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
