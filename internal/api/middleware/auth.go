package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accountkit/user-api/internal/api/metrics"
	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

const userIDKey = "user_id"

type authConfig struct {
	sessionCheck bool
	log          zerolog.Logger
}

// AuthOption customises the Auth middleware.
type AuthOption func(*authConfig)

// WithSessionCheck controls whether a verified token must also be the one
// currently stored for its user. Enabled by default.
func WithSessionCheck(enabled bool) AuthOption {
	return func(cfg *authConfig) { cfg.sessionCheck = enabled }
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(log zerolog.Logger) AuthOption {
	return func(cfg *authConfig) { cfg.log = log }
}

// Auth verifies the token in the Authorization header and stores the caller's
// user id in the context. The header carries the raw token; a "Bearer "
// prefix is accepted too.
func Auth(tokens ports.TokenService, opts ...AuthOption) echo.MiddlewareFunc {
	cfg := authConfig{sessionCheck: true, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return reject(c, cfg.log, domain.ErrTokenMissing)
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return reject(c, cfg.log, err)
			}

			if cfg.sessionCheck {
				active, err := tokens.IsActive(c.Request().Context(), claims.UserID, raw)
				if err != nil {
					metrics.TokenChecksTotal.WithLabelValues("error").Inc()
					return err
				}
				if !active {
					return reject(c, cfg.log, domain.ErrTokenRevoked)
				}
			}

			metrics.TokenChecksTotal.WithLabelValues("ok").Inc()
			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// UserID returns the id stored by Auth. ok is false on routes without the gate.
func UserID(c echo.Context) (id int64, ok bool) {
	id, ok = c.Get(userIDKey).(int64)
	return id, ok && id > 0
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func reject(c echo.Context, log zerolog.Logger, err error) error {
	reason := rejectReason(err)
	metrics.TokenChecksTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Str("reason", reason).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request rejected by auth gate")
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "missing"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignature):
		return "signature"
	case errors.Is(err, domain.ErrTokenClaimMissing):
		return "claim_missing"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	default:
		return "malformed"
	}
}
