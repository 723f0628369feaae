package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
)

// stubTokenService implements ports.TokenService with a fixed Validate result.
type stubTokenService struct {
	claims *ports.Claims
	err    error
}

func (s *stubTokenService) Issue(context.Context, string, int, string, string) (string, *ports.Claims, error) {
	return "", nil, nil
}

func (s *stubTokenService) Validate(context.Context, string) (*ports.Claims, error) {
	return s.claims, s.err
}

func (s *stubTokenService) Refresh(context.Context, string) (string, *ports.Claims, error) {
	return "", nil, nil
}

func (s *stubTokenService) Revoke(context.Context, string) error { return nil }

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func TestAuth_ValidToken(t *testing.T) {
	claims := &ports.Claims{SessionID: "sess-1", RemoteID: 42, Username: "jdoe", Role: domain.RoleUser}
	mw := Auth(&stubTokenService{claims: claims})

	rec, c, err := invoke(t, mw, "Bearer some-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got, _ := c.Get(CtxClaims).(*ports.Claims); got != claims {
		t.Fatalf("claims not injected: %v", got)
	}
	if got, _ := c.Get(CtxToken).(string); got != "some-token" {
		t.Fatalf("token not injected: %q", got)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	mw := Auth(&stubTokenService{})

	_, _, err := invoke(t, mw, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	mw := Auth(&stubTokenService{})

	_, _, err := invoke(t, mw, "Basic dXNlcjpwYXNz")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_RejectedToken(t *testing.T) {
	mw := Auth(&stubTokenService{err: domain.ErrTokenExpired})

	_, _, err := invoke(t, mw, "Bearer stale-token")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_CaseInsensitiveScheme(t *testing.T) {
	claims := &ports.Claims{SessionID: "sess-1", Role: domain.RoleUser}
	mw := Auth(&stubTokenService{claims: claims})

	rec, _, err := invoke(t, mw, "bearer some-token")
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("lowercase scheme rejected: %v (status %d)", err, rec.Code)
	}
}
