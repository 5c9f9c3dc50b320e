package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accountkit/user-api/internal/api/handler"
	"github.com/accountkit/user-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the error envelope {"api": "v1", "status": "error", "message": ...}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.NewErrorEnvelope(msg))
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, any) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Fields
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusBadRequest, conflict.AsValidation().Fields
	}

	// Echo's own errors (bind failures, 404 from router, etc.) and
	// handler-chosen codes carrying a field map.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch m := he.Message.(type) {
		case map[string]string:
			return he.Code, m
		case string:
			return he.Code, errorMessage(m)
		default:
			return he.Code, errorMessage(fmt.Sprintf("%v", m))
		}
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorMessage(domain.MsgAuthorization)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorMessage(domain.MsgInvalidCredentials)
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorMessage(domain.MsgUserNotFound)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorMessage(domain.MsgInternal)
}

func errorMessage(msg string) map[string]string {
	return map[string]string{"error": msg}
}
