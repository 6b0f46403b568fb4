package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agriscience/catalog/internal/api/handler"
	"github.com/agriscience/catalog/internal/core/domain"
)

// Machine-checkable error categories carried in the "code" field.
const (
	CodeValidationFailed    = "validation_failed"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeUnauthenticated     = "unauthenticated"
	CodeNotAuthorized       = "not_authorized"
	CodeNotFound            = "not_found"
	CodeMethodNotAllowed    = "method_not_allowed"
	CodeRateLimited         = "rate_limited"
	CodeTimeout             = "timeout"
	CodeServerMisconfigured = "server_misconfigured"
	CodeInternal            = "internal_error"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and category code.
//   - Logs configuration and unexpected errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<category>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message), Code: codeForStatus(he.Code)}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidProduct):
		return http.StatusBadRequest, handler.ErrorResponse{Error: err.Error(), Code: CodeValidationFailed}
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, handler.ErrorResponse{Error: "email and password are required", Code: CodeValidationFailed}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "invalid email or password", Code: CodeInvalidCredentials}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "authentication required", Code: CodeUnauthenticated}
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden, handler.ErrorResponse{Error: "this account is not authorized to access the admin area", Code: CodeNotAuthorized}
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "product not found", Code: CodeNotFound}
	case errors.Is(err, domain.ErrAuthNotConfigured):
		log.Error().
			Err(err).
			Str("kind", "configuration").
			Str("path", c.Path()).
			Msg("request failed on missing configuration")
		return http.StatusInternalServerError, handler.ErrorResponse{Error: "server configuration error", Code: CodeServerMisconfigured}
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request timed out")
		return http.StatusServiceUnavailable, handler.ErrorResponse{Error: "the service is busy, try again", Code: CodeTimeout}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error", Code: CodeInternal}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return CodeValidationFailed
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeNotAuthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodeInternal
	}
}
