package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
)

const (
	// tokenLifetime is the full validity window of an issued token.
	tokenLifetime = 12 * time.Hour
	// refreshWindow is how close to expiry a token must be before it may
	// be refreshed.
	refreshWindow = time.Hour
)

// TokenService implements ports.TokenService with HS256-signed JWTs.
// The registry pins the latest token id per session so a refreshed token
// supersedes every earlier one.
type TokenService struct {
	secret   []byte
	registry ports.TokenRegistry
	now      func() time.Time
}

func NewTokenService(secret string, registry ports.TokenRegistry) *TokenService {
	return &TokenService{secret: []byte(secret), registry: registry, now: time.Now}
}

// Issue signs a fresh 12-hour token and registers it as the session's
// current token.
func (s *TokenService) Issue(ctx context.Context, sessionID string, remoteID int, username, role string) (string, *ports.Claims, error) {
	now := s.now().UTC()
	claims := &ports.Claims{
		SessionID: sessionID,
		TokenID:   newTokenID(),
		RemoteID:  remoteID,
		Username:  username,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(tokenLifetime),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", remoteID),
		"sid":      sessionID,
		"jti":      claims.TokenID,
		"username": username,
		"role":     role,
		"iat":      jwt.NewNumericDate(claims.IssuedAt),
		"exp":      jwt.NewNumericDate(claims.ExpiresAt),
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.registry.SetCurrent(ctx, sessionID, claims.TokenID, tokenLifetime); err != nil {
		return "", nil, fmt.Errorf("register token: %w", err)
	}
	return signed, claims, nil
}

// Validate verifies signature and expiry, then checks the token is still the
// session's current one. A superseded token fails as expired.
func (s *TokenService) Validate(ctx context.Context, token string) (*ports.Claims, error) {
	mc := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, mc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrSignatureMismatch
		default:
			return nil, domain.ErrTokenMalformed
		}
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenMalformed
	}

	claims, err := claimsFrom(mc)
	if err != nil {
		return nil, err
	}

	current, err := s.registry.Current(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("token registry: %w", err)
	}
	if current != claims.TokenID {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}

// Refresh exchanges a valid token within the refresh window for a fresh one
// carrying the same subject and role. The new token supersedes the old.
func (s *TokenService) Refresh(ctx context.Context, token string) (string, *ports.Claims, error) {
	claims, err := s.Validate(ctx, token)
	if err != nil {
		return "", nil, err
	}
	if claims.ExpiresAt.Sub(s.now()) >= refreshWindow {
		return "", nil, domain.ErrNotEligible
	}
	return s.Issue(ctx, claims.SessionID, claims.RemoteID, claims.Username, claims.Role)
}

// Revoke drops the session's current token from the registry. Idempotent.
func (s *TokenService) Revoke(ctx context.Context, sessionID string) error {
	return s.registry.Clear(ctx, sessionID)
}

func claimsFrom(mc jwt.MapClaims) (*ports.Claims, error) {
	sid, _ := mc["sid"].(string)
	jti, _ := mc["jti"].(string)
	username, _ := mc["username"].(string)
	role, _ := mc["role"].(string)
	sub, _ := mc["sub"].(string)
	if sid == "" || jti == "" || sub == "" {
		return nil, domain.ErrTokenMalformed
	}

	var remoteID int
	if _, err := fmt.Sscanf(sub, "%d", &remoteID); err != nil {
		return nil, domain.ErrTokenMalformed
	}

	iat, err := mc.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, domain.ErrTokenMalformed
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrTokenMalformed
	}

	return &ports.Claims{
		SessionID: sid,
		TokenID:   jti,
		RemoteID:  remoteID,
		Username:  username,
		Role:      role,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}

// newTokenID returns a random 16-hex-character token identifier.
func newTokenID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%016x", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b)
}
