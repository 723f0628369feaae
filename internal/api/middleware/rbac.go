package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cvbridge/ticketing/internal/core/ports"
)

// RBAC enforces role-based access control on the claims injected by Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := c.Get(CtxClaims).(*ports.Claims)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authentication claims"})
			}
			if _, ok := allowed[claims.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
