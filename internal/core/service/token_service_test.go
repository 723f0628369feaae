package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// memRegistry is an in-memory ports.TokenRegistry for tests.
type memRegistry struct {
	mu      sync.Mutex
	current map[string]string
}

func newMemRegistry() *memRegistry {
	return &memRegistry{current: make(map[string]string)}
}

func (r *memRegistry) SetCurrent(_ context.Context, sessionID, tokenID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current[sessionID] = tokenID
	return nil
}

func (r *memRegistry) Current(_ context.Context, sessionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.current[sessionID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

func (r *memRegistry) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.current, sessionID)
	return nil
}

func newTestTokenService(now time.Time) (*TokenService, *memRegistry) {
	registry := newMemRegistry()
	svc := NewTokenService("test-secret", registry)
	svc.now = func() time.Time { return now }
	return svc, registry
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	issuedAt := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTokenService(issuedAt)
	ctx := context.Background()

	token, claims, err := svc.Issue(ctx, "sess-1", 42, "jdoe", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if want := issuedAt.Add(12 * time.Hour); !claims.ExpiresAt.Equal(want) {
		t.Fatalf("expires at = %v, want %v", claims.ExpiresAt, want)
	}

	got, err := svc.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.SessionID != "sess-1" || got.RemoteID != 42 || got.Username != "jdoe" || got.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", got)
	}
	if got.TokenID != claims.TokenID {
		t.Fatalf("token id = %q, want %q", got.TokenID, claims.TokenID)
	}
}

func TestTokenService_ValidateExpired(t *testing.T) {
	issuedAt := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTokenService(issuedAt)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "sess-1", 42, "jdoe", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(12*time.Hour + time.Second) }
	if _, err := svc.Validate(ctx, token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_ValidateMalformed(t *testing.T) {
	svc, _ := newTestTokenService(time.Now())
	if _, err := svc.Validate(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_ValidateWrongSecret(t *testing.T) {
	now := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	svc, registry := newTestTokenService(now)

	token, _, err := svc.Issue(context.Background(), "sess-1", 42, "jdoe", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenService("different-secret", registry)
	other.now = svc.now

	if _, err := other.Validate(context.Background(), token); !errors.Is(err, domain.ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestTokenService_ValidateRevoked(t *testing.T) {
	now := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTokenService(now)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "sess-1", 42, "jdoe", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, "sess-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := svc.Validate(ctx, token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after revoke, got %v", err)
	}

	// Revoking again is a no-op.
	if err := svc.Revoke(ctx, "sess-1"); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestTokenService_RefreshOutsideWindow(t *testing.T) {
	issuedAt := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTokenService(issuedAt)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "sess-1", 42, "jdoe", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// 10h59m left on the clock, well outside the one-hour window.
	svc.now = func() time.Time { return issuedAt.Add(time.Hour + time.Minute) }
	if _, _, err := svc.Refresh(ctx, token); !errors.Is(err, domain.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}

	// Exactly one hour remaining is still not eligible.
	svc.now = func() time.Time { return issuedAt.Add(11 * time.Hour) }
	if _, _, err := svc.Refresh(ctx, token); !errors.Is(err, domain.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible at the boundary, got %v", err)
	}
}

func TestTokenService_RefreshSupersedesOldToken(t *testing.T) {
	issuedAt := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTokenService(issuedAt)
	ctx := context.Background()

	old, _, err := svc.Issue(ctx, "sess-1", 42, "jdoe", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Less than an hour remaining.
	refreshAt := issuedAt.Add(11*time.Hour + 30*time.Minute)
	svc.now = func() time.Time { return refreshAt }

	fresh, claims, err := svc.Refresh(ctx, old)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if want := refreshAt.Add(12 * time.Hour); !claims.ExpiresAt.Equal(want) {
		t.Fatalf("refreshed expiry = %v, want %v", claims.ExpiresAt, want)
	}

	if _, err := svc.Validate(ctx, fresh); err != nil {
		t.Fatalf("fresh token should validate: %v", err)
	}
	if _, err := svc.Validate(ctx, old); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("superseded token should fail as expired, got %v", err)
	}
}

func TestTokenService_RefreshExpiredToken(t *testing.T) {
	issuedAt := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTokenService(issuedAt)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "sess-1", 42, "jdoe", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(13 * time.Hour) }
	if _, _, err := svc.Refresh(ctx, token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
