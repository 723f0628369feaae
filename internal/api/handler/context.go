package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/cvbridge/ticketing/internal/api/middleware"
	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
	"github.com/cvbridge/ticketing/internal/core/session"
)

// ctxClaims extracts the verified claims injected by the Auth middleware.
// Presence proves the middleware ran.
func ctxClaims(c echo.Context) (*ports.Claims, error) {
	claims, _ := c.Get(appmw.CtxClaims).(*ports.Claims)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// ctxSession returns the live session for the claims. After a process
// restart the in-memory session is gone while the token may still validate;
// in that case a credential-less session is rebuilt from the claims so
// ticket operations proceed under the fallback authority.
func ctxSession(c echo.Context, sessions *session.Manager) (*session.Session, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return nil, err
	}
	if sess := sessions.Get(claims.SessionID); sess != nil {
		return sess, nil
	}

	sess := &session.Session{
		ID: claims.SessionID,
		Identity: domain.Identity{
			RemoteID: claims.RemoteID,
			Username: claims.Username,
		},
		Role: claims.Role,
	}
	sess.SetExpiry(claims.ExpiresAt)
	return sess, nil
}
