package service

import (
	"time"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/session"
)

// CredentialResolver picks the authority for each outbound remote call:
// the session's personal credential while it is unexpired, else the
// configured fallback API key, else no authority at all.
type CredentialResolver struct {
	fallbackKey string
	now         func() time.Time
}

func NewCredentialResolver(fallbackAPIKey string) *CredentialResolver {
	return &CredentialResolver{fallbackKey: fallbackAPIKey, now: time.Now}
}

// Resolve returns the authority to sign the next call with. The result's
// Source tells the caller which path was taken; SourceUnavailable leaves the
// proceed-or-fail decision to the caller.
func (r *CredentialResolver) Resolve(sess *session.Session) domain.Authority {
	if sess != nil {
		if cred := sess.Credential(); cred != nil && r.now().Before(sess.ExpiresAt()) {
			return domain.Authority{
				Source:     domain.SourceSession,
				Credential: cred,
				Username:   cred.Username,
			}
		}
	}
	if r.fallbackKey != "" {
		auth := domain.Authority{Source: domain.SourceFallback, APIKey: r.fallbackKey}
		if sess != nil {
			auth.Username = sess.Identity.Username
		}
		return auth
	}
	return domain.Authority{Source: domain.SourceUnavailable}
}

// SetSessionCredential stores the personal credential in session memory only.
func (r *CredentialResolver) SetSessionCredential(sess *session.Session, cred domain.Credential) {
	sess.SetCredential(cred)
}

// ClearSessionCredential discards the session credential. Idempotent; called
// on logout.
func (r *CredentialResolver) ClearSessionCredential(sess *session.Session) {
	if sess != nil {
		sess.ClearCredential()
	}
}
