package service

import (
	"testing"
	"time"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/session"
)

func newTestSession(expiresAt time.Time) *session.Session {
	m := session.NewManager()
	return m.Create(domain.Identity{RemoteID: 42, Username: "jdoe"}, domain.RoleUser, expiresAt)
}

func TestResolve_SessionCredentialWins(t *testing.T) {
	now := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	r := NewCredentialResolver("fallback-key")
	r.now = func() time.Time { return now }

	sess := newTestSession(now.Add(time.Hour))
	r.SetSessionCredential(sess, domain.Credential{Username: "jdoe", Password: "secret"})

	auth := r.Resolve(sess)
	if auth.Source != domain.SourceSession {
		t.Fatalf("source = %s, want %s", auth.Source, domain.SourceSession)
	}
	if auth.Credential == nil || auth.Credential.Username != "jdoe" {
		t.Fatalf("unexpected credential: %+v", auth.Credential)
	}
	if auth.Username != "jdoe" {
		t.Fatalf("username = %q", auth.Username)
	}
}

func TestResolve_ExpiredSessionFallsBack(t *testing.T) {
	now := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	r := NewCredentialResolver("fallback-key")
	r.now = func() time.Time { return now }

	sess := newTestSession(now.Add(-time.Minute))
	r.SetSessionCredential(sess, domain.Credential{Username: "jdoe", Password: "secret"})

	auth := r.Resolve(sess)
	if auth.Source != domain.SourceFallback {
		t.Fatalf("source = %s, want %s", auth.Source, domain.SourceFallback)
	}
	if auth.APIKey != "fallback-key" {
		t.Fatalf("api key = %q", auth.APIKey)
	}
	if auth.Username != "jdoe" {
		t.Fatalf("fallback authority should keep the session identity, got %q", auth.Username)
	}
}

func TestResolve_NoCredentialFallsBack(t *testing.T) {
	r := NewCredentialResolver("fallback-key")

	auth := r.Resolve(newTestSession(time.Now().Add(time.Hour)))
	if auth.Source != domain.SourceFallback {
		t.Fatalf("source = %s, want %s", auth.Source, domain.SourceFallback)
	}
}

func TestResolve_NilSessionFallsBack(t *testing.T) {
	r := NewCredentialResolver("fallback-key")

	auth := r.Resolve(nil)
	if auth.Source != domain.SourceFallback {
		t.Fatalf("source = %s, want %s", auth.Source, domain.SourceFallback)
	}
	if auth.Username != "" {
		t.Fatalf("no identity to attribute, got %q", auth.Username)
	}
}

func TestResolve_Unavailable(t *testing.T) {
	r := NewCredentialResolver("")

	auth := r.Resolve(newTestSession(time.Now().Add(-time.Hour)))
	if auth.Source != domain.SourceUnavailable {
		t.Fatalf("source = %s, want %s", auth.Source, domain.SourceUnavailable)
	}
}

func TestClearSessionCredential_Idempotent(t *testing.T) {
	now := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	r := NewCredentialResolver("")
	r.now = func() time.Time { return now }

	sess := newTestSession(now.Add(time.Hour))
	r.SetSessionCredential(sess, domain.Credential{Username: "jdoe", Password: "secret"})

	r.ClearSessionCredential(sess)
	r.ClearSessionCredential(sess)
	r.ClearSessionCredential(nil)

	if auth := r.Resolve(sess); auth.Source != domain.SourceUnavailable {
		t.Fatalf("credential survived clear: %+v", auth)
	}
}
