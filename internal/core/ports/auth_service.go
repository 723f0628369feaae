package ports

import (
	"context"
	"time"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// LoginResult is returned after a successful authentication.
type LoginResult struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	Identity  domain.Identity
	Record    *domain.RoleRecord
}

// RefreshResult is returned after a successful token refresh.
type RefreshResult struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService owns the login/token/role lifecycle.
type AuthService interface {
	// Login validates the credential against the remote service, upserts
	// the local role record, opens a session, and issues a token.
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// Logout tears the session down. Idempotent; a second call is a no-op.
	Logout(ctx context.Context, sessionID string) error

	// Refresh exchanges a near-expiry token for a fresh one.
	Refresh(ctx context.Context, token string) (*RefreshResult, error)

	// CurrentUser returns the role record backing validated claims.
	CurrentUser(ctx context.Context, claims *Claims) (*domain.RoleRecord, error)

	// SetRole changes a user's local role. Only admins may call it.
	SetRole(ctx context.Context, actor *Claims, remoteID int, role string) error

	// ListUsers returns all role records. Only admins may call it.
	ListUsers(ctx context.Context, actor *Claims) ([]*domain.RoleRecord, error)

	// IncrementConversions bumps the conversion counter for a user. The
	// core exposes this for the conversion pipeline and never calls it
	// itself.
	IncrementConversions(ctx context.Context, remoteID int) error
}
