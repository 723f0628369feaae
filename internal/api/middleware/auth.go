package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cvbridge/ticketing/internal/core/ports"
)

// Context keys set by the Auth middleware.
const (
	CtxClaims = "claims"
	CtxToken  = "token"
)

// Auth validates the bearer token through the token service (signature,
// expiry, and supersession) and injects the verified claims into context.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c)
			if err != nil {
				return err
			}

			claims, err := tokens.Validate(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxClaims, claims)
			c.Set(CtxToken, token)
			return next(c)
		}
	}
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}
