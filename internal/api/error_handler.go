package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking remote payloads or
//     credentials to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrSignatureMismatch):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, domain.ErrNotEligible):
		return http.StatusConflict, "token not eligible for refresh"
	case errors.Is(err, domain.ErrNoAuthority):
		return http.StatusUnauthorized, "no credential available"
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "ticketing service rate limited"
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, "ticketing service timeout"
	case errors.Is(err, domain.ErrServiceUnavailable),
		errors.Is(err, domain.ErrRemoteServer):
		return http.StatusBadGateway, "ticketing service unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
