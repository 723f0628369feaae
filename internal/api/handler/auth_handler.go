package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cvbridge/ticketing/internal/api/metrics"
	appmw "github.com/cvbridge/ticketing/internal/api/middleware"
	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	RemoteID        int               `json:"remote_id"`
	Username        string            `json:"username"`
	Role            string            `json:"role"`
	CustomFields    map[string]string `json:"custom_fields,omitempty"`
	LastLogin       time.Time         `json:"last_login"`
	ConversionCount int               `json:"conversion_count"`
	CreatedAt       time.Time         `json:"created_at"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type refreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func userResponseFrom(rec *domain.RoleRecord) userResponse {
	return userResponse{
		RemoteID:        rec.RemoteID,
		Username:        rec.Username,
		Role:            rec.Role,
		CustomFields:    rec.CustomFields,
		LastLogin:       rec.LastLogin,
		ConversionCount: rec.ConversionCount,
		CreatedAt:       rec.CreatedAt,
	}
}

// Login authenticates against the remote ticketing service and opens a session.
//
// @Summary      Login with remote ticketing credentials
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userResponseFrom(result.Record),
	})
}

// Refresh exchanges a near-expiry token for a fresh one.
//
// @Summary      Refresh the session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  refreshResponse
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, err := appmw.BearerToken(c)
	if err != nil {
		return err
	}

	result, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotEligible) {
			metrics.TokenRefreshTotal.WithLabelValues("not_eligible").Inc()
		} else {
			metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, refreshResponse{Token: result.Token, ExpiresAt: result.ExpiresAt})
}

// Logout tears the session down. Idempotent.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204  "session discarded"
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims.SessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the role record behind the current token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	rec, err := h.authService.CurrentUser(c.Request().Context(), claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponseFrom(rec))
}
