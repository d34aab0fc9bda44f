package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/gateway"
)

// errorResponse is the canonical error envelope for all REST errors.
type errorResponse struct {
	Error      string             `json:"error"`
	Code       string             `json:"code,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the gateway error taxonomy to HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	body := errorResponse{Error: gateway.Message(err), Code: gateway.Code(err)}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		body.Violations = ve.Violations
		return http.StatusBadRequest, body
	case errors.Is(err, domain.ErrReferenceNotFound):
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, domain.ErrDuplicateKey), errors.Is(err, domain.ErrRoleInUse):
		return http.StatusConflict, body
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, gateway.ErrUnknownOperation):
		return http.StatusNotFound, body
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("store unavailable")
		return http.StatusServiceUnavailable, body
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, body
}
