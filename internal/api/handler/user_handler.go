package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cvbridge/ticketing/internal/core/ports"
)

// UserHandler exposes role-record administration.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// List handles GET /v1/users (admin only).
//
// @Summary      List role records
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  map[string]string
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	records, err := h.authService.ListUsers(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, userResponseFrom(rec))
	}
	return c.JSON(http.StatusOK, out)
}

// SetRole handles PUT /v1/users/:id/role (admin only).
//
// @Summary      Change a user's local role
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int             true  "Remote user id"
// @Param        body  body  setRoleRequest  true  "New role"
// @Success      204   "role updated"
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/users/{id}/role [put]
func (h *UserHandler) SetRole(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	remoteID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.authService.SetRole(c.Request().Context(), claims, remoteID, req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// IncrementConversions handles POST /v1/users/:id/conversions. The conversion
// pipeline calls this after a completed conversion; the core never does.
//
// @Summary      Increment a user's conversion counter
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  int  true  "Remote user id"
// @Success      204  "counter incremented"
// @Failure      404  {object}  map[string]string
// @Router       /v1/users/{id}/conversions [post]
func (h *UserHandler) IncrementConversions(c echo.Context) error {
	remoteID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}
	if err := h.authService.IncrementConversions(c.Request().Context(), remoteID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
