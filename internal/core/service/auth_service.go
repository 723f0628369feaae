package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
	"github.com/cvbridge/ticketing/internal/core/session"
	"github.com/cvbridge/ticketing/internal/pkg/retry"
)

// AuthService implements the login/token/role lifecycle.
type AuthService struct {
	gateway  ports.TicketGateway
	roles    ports.RoleRepository
	audit    ports.AuditRepository
	tokens   ports.TokenService
	sessions *session.Manager
	resolver *CredentialResolver
	policy   retry.Policy
	log      zerolog.Logger
	now      func() time.Time

	// firstLogin serialises the empty-store check with the insert so two
	// concurrent first logins cannot both become admin.
	firstLogin sync.Mutex
}

func NewAuthService(
	gateway ports.TicketGateway,
	roles ports.RoleRepository,
	audit ports.AuditRepository,
	tokens ports.TokenService,
	sessions *session.Manager,
	resolver *CredentialResolver,
	policy retry.Policy,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		gateway:  gateway,
		roles:    roles,
		audit:    audit,
		tokens:   tokens,
		sessions: sessions,
		resolver: resolver,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// Login validates the credential against the remote service, upserts the
// local role record, opens a session, and issues a token. Transient remote
// failures are retried; a credential rejection is surfaced immediately.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	cred := domain.Credential{Username: username, Password: password}

	var identity *domain.Identity
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		identity, err = s.gateway.CurrentUser(ctx, cred)
		return err
	})
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("authentication failed")
		return nil, err
	}

	record, err := s.upsertLogin(ctx, identity)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.Create(*identity, record.Role, time.Time{})
	token, claims, err := s.tokens.Issue(ctx, sess.ID, identity.RemoteID, identity.Username, record.Role)
	if err != nil {
		s.sessions.Delete(sess.ID)
		return nil, err
	}
	sess.SetExpiry(claims.ExpiresAt)
	s.resolver.SetSessionCredential(sess, cred)

	s.auditEvent(ctx, identity.RemoteID, identity.Username, domain.AuditLogin, "")

	s.log.Info().
		Int("remote_id", identity.RemoteID).
		Str("username", identity.Username).
		Str("role", record.Role).
		Msg("login succeeded")

	return &ports.LoginResult{
		Token:     token,
		SessionID: sess.ID,
		ExpiresAt: claims.ExpiresAt,
		Identity:  *identity,
		Record:    record,
	}, nil
}

// upsertLogin creates or refreshes the role record for an identity. The very
// first record in an empty store gets the admin role; everyone after that
// defaults to user.
func (s *AuthService) upsertLogin(ctx context.Context, identity *domain.Identity) (*domain.RoleRecord, error) {
	s.firstLogin.Lock()
	defer s.firstLogin.Unlock()

	now := s.now().UTC()

	existing, err := s.roles.FindByRemoteID(ctx, identity.RemoteID)
	if err == nil {
		if err := s.roles.UpdateLogin(ctx, identity.RemoteID, now, identity.CustomFields); err != nil {
			return nil, fmt.Errorf("update login: %w", err)
		}
		existing.LastLogin = now
		existing.CustomFields = identity.CustomFields
		return existing, nil
	}
	if err != domain.ErrNotFound {
		return nil, fmt.Errorf("find role record: %w", err)
	}

	count, err := s.roles.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count role records: %w", err)
	}
	role := domain.RoleUser
	if count == 0 {
		role = domain.RoleAdmin
	}

	record := &domain.RoleRecord{
		RemoteID:     identity.RemoteID,
		Username:     identity.Username,
		CustomFields: identity.CustomFields,
		Role:         role,
		LastLogin:    now,
		CreatedAt:    now,
	}
	if err := s.roles.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create role record: %w", err)
	}
	return record, nil
}

// Logout discards the session's token and credential. Safe to call multiple
// times; a second call is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.tokens.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if sess := s.sessions.Get(sessionID); sess != nil {
		s.auditEvent(ctx, sess.Identity.RemoteID, sess.Identity.Username, domain.AuditLogout, "")
	}
	s.sessions.Delete(sessionID)
	return nil
}

// Refresh exchanges a near-expiry token for a fresh one and extends the
// session window to match.
func (s *AuthService) Refresh(ctx context.Context, token string) (*ports.RefreshResult, error) {
	fresh, claims, err := s.tokens.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess := s.sessions.Get(claims.SessionID); sess != nil {
		sess.SetExpiry(claims.ExpiresAt)
	}
	return &ports.RefreshResult{Token: fresh, ExpiresAt: claims.ExpiresAt}, nil
}

// CurrentUser returns the role record backing validated claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *ports.Claims) (*domain.RoleRecord, error) {
	return s.roles.FindByRemoteID(ctx, claims.RemoteID)
}

// SetRole changes a user's local role. Only admins may call it.
func (s *AuthService) SetRole(ctx context.Context, actor *ports.Claims, remoteID int, role string) error {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return domain.ErrPermission
	}
	if !domain.ValidRole(role) {
		return &domain.ValidationError{Field: "role", Reason: "must be admin or user"}
	}
	if err := s.roles.UpdateRole(ctx, remoteID, role); err != nil {
		return err
	}
	s.auditEvent(ctx, remoteID, "", domain.AuditRoleChange, fmt.Sprintf("role=%s by %s", role, actor.Username))
	return nil
}

// ListUsers returns all role records. Only admins may call it.
func (s *AuthService) ListUsers(ctx context.Context, actor *ports.Claims) ([]*domain.RoleRecord, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, domain.ErrPermission
	}
	return s.roles.List(ctx)
}

// IncrementConversions bumps the conversion counter. Exposed for the
// conversion pipeline; the core never invokes it itself.
func (s *AuthService) IncrementConversions(ctx context.Context, remoteID int) error {
	return s.roles.IncrementConversions(ctx, remoteID)
}

// auditEvent appends to the audit trail; failures are logged, never fatal.
func (s *AuthService) auditEvent(ctx context.Context, remoteID int, username, action, detail string) {
	event := &domain.AuditEvent{
		RemoteID: remoteID,
		Username: username,
		Action:   action,
		Detail:   detail,
		At:       s.now().UTC(),
	}
	if err := s.audit.Insert(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to insert audit event")
	}
}
