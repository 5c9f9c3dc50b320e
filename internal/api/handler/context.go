package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/accountkit/user-api/internal/api/middleware"
	"github.com/accountkit/user-api/internal/core/domain"
)

// ctxUserID returns the caller's id as established by the Auth middleware.
// Handlers never take the id from the request body or path.
func ctxUserID(c echo.Context) (int64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}
