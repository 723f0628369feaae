package ports

import (
	"context"
	"time"
)

// Claims is the decoded, verified content of a session token.
type Claims struct {
	SessionID string
	TokenID   string
	RemoteID  int
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues, validates, and refreshes signed session tokens.
type TokenService interface {
	// Issue signs a fresh token for the subject. The returned token
	// becomes the session's current token, superseding earlier ones.
	Issue(ctx context.Context, sessionID string, remoteID int, username, role string) (string, *Claims, error)

	// Validate verifies signature, expiry, and supersession, returning the
	// claims or one of domain.ErrTokenExpired, ErrTokenMalformed,
	// ErrSignatureMismatch.
	Validate(ctx context.Context, token string) (*Claims, error)

	// Refresh exchanges a valid token inside the refresh window for a new
	// one with a full lifetime. Returns domain.ErrNotEligible outside the
	// window.
	Refresh(ctx context.Context, token string) (string, *Claims, error)

	// Revoke invalidates the session's current token. Idempotent.
	Revoke(ctx context.Context, sessionID string) error
}

// TokenRegistry records the latest token id issued per session so that
// earlier tokens stop validating once a refresh lands.
type TokenRegistry interface {
	SetCurrent(ctx context.Context, sessionID, tokenID string, ttl time.Duration) error
	// Current returns the session's latest token id, or domain.ErrNotFound.
	Current(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}

// UserCache memoises remote login → id lookups performed under the fallback
// authority.
type UserCache interface {
	GetUserID(ctx context.Context, login string) (int, bool, error)
	SetUserID(ctx context.Context, login string, id int) error
}
