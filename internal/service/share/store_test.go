package share

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/repository/memory"
)

func newTestStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	return &Store{
		repo:   memory.NewShareTokenRepository(),
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return now },
	}
}

func TestCreateAndResolve(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, now)
	ctx := context.Background()

	ttl := time.Hour
	token, plaintext, err := store.Create(ctx, "u1", "LIB1", models.KindFile, 42, &ttl)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if plaintext == "" {
		t.Fatal("Create() returned empty plaintext")
	}
	if token.TokenHash == plaintext {
		t.Error("plaintext persisted as hash")
	}
	if token.TokenHash != HashToken(plaintext) {
		t.Error("stored hash does not match plaintext hash")
	}

	// Read-your-write: resolving right after creation observes the share.
	resolved, err := store.Resolve(ctx, plaintext, "LIB1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.TargetKind != models.KindFile || resolved.TargetID != 42 {
		t.Errorf("resolved target = %v %d, want FILE 42", resolved.TargetKind, resolved.TargetID)
	}
	if resolved.OwnerID != "u1" || resolved.Tenant != "LIB1" {
		t.Errorf("resolved owner/tenant = %s/%s", resolved.OwnerID, resolved.Tenant)
	}
}

func TestResolveFailureKinds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, now)
	ctx := context.Background()

	if _, err := store.Resolve(ctx, "no-such-token", "LIB1"); !errors.Is(err, domain.ErrShareNotFound) {
		t.Errorf("unknown token: error = %v, want ErrShareNotFound", err)
	}

	// A token created with an already-elapsed ttl resolves as expired,
	// not as missing.
	negative := -time.Second
	_, expiredPlain, err := store.Create(ctx, "u1", "LIB1", models.KindFile, 1, &negative)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Resolve(ctx, expiredPlain, "LIB1"); !errors.Is(err, domain.ErrShareExpired) {
		t.Errorf("expired token: error = %v, want ErrShareExpired", err)
	}

	// A revoked token resolves as disabled even before its expiry.
	ttl := time.Hour
	_, revokedPlain, err := store.Create(ctx, "u1", "LIB1", models.KindFolder, 2, &ttl)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Revoke(ctx, "u1", models.RoleReader, revokedPlain, "LIB1"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if _, err := store.Resolve(ctx, revokedPlain, "LIB1"); !errors.Is(err, domain.ErrShareDisabled) {
		t.Errorf("revoked token: error = %v, want ErrShareDisabled", err)
	}

	// Tenant is part of the lookup key.
	_, plain, err := store.Create(ctx, "u1", "LIB1", models.KindFile, 3, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Resolve(ctx, plain, "LIB2"); !errors.Is(err, domain.ErrShareNotFound) {
		t.Errorf("wrong tenant: error = %v, want ErrShareNotFound", err)
	}
}

func TestResolveNeverExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, now)
	ctx := context.Background()

	_, plain, err := store.Create(ctx, "u1", "LIB1", models.KindBucket, 5, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Far in the future, a nil-expiry share still resolves.
	store.now = func() time.Time { return now.AddDate(10, 0, 0) }
	if _, err := store.Resolve(ctx, plain, "LIB1"); err != nil {
		t.Errorf("Resolve() error = %v, want nil for never-expiring share", err)
	}
}

func TestRevokeAuthorization(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, now)
	ctx := context.Background()

	_, plain, err := store.Create(ctx, "u1", "LIB1", models.KindFile, 7, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Revoke(ctx, "u2", models.RoleLibrarian, plain, "LIB1"); !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("librarian revoke of foreign share: error = %v, want ErrNotOwner", err)
	}
	if err := store.Revoke(ctx, "u2", models.RoleAdmin, plain, "LIB1"); err != nil {
		t.Errorf("admin revoke: error = %v, want nil", err)
	}
	if err := store.Revoke(ctx, "u1", models.RoleReader, "missing", "LIB1"); !errors.Is(err, domain.ErrShareNotFound) {
		t.Errorf("revoke missing: error = %v, want ErrShareNotFound", err)
	}
}

func TestPurgeDead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, now)
	ctx := context.Background()

	// Live share, expired share, revoked share.
	_, livePlain, _ := store.Create(ctx, "u1", "LIB1", models.KindFile, 1, nil)
	negative := -48 * time.Hour
	_, _, _ = store.Create(ctx, "u1", "LIB1", models.KindFile, 2, &negative)
	_, revokedPlain, _ := store.Create(ctx, "u1", "LIB1", models.KindFile, 3, nil)
	if err := store.Revoke(ctx, "u1", models.RoleReader, revokedPlain, "LIB1"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	// Purge as of a month later: the expired and revoked rows go.
	store.now = func() time.Time { return now.Add(30 * 24 * time.Hour) }
	n, err := store.PurgeDead(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeDead() error = %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeDead() = %d, want 2", n)
	}

	if _, err := store.Resolve(ctx, livePlain, "LIB1"); err != nil {
		t.Errorf("live share gone after purge: %v", err)
	}
}
