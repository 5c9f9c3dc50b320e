package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accountkit/user-api/internal/api/metrics"
	"github.com/accountkit/user-api/internal/core/ports"
)

type PasswordHandler struct {
	accounts ports.AccountService
}

func NewPasswordHandler(accounts ports.AccountService) *PasswordHandler {
	return &PasswordHandler{accounts: accounts}
}

type changePasswordRequest struct {
	OldPassword *string `json:"old_password" validate:"required"`
	NewPassword *string `json:"new_password" validate:"required"`
}

// Change rotates the authenticated user's password.
//
// @Summary      Change password
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      201   {object}  successEnvelope
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Router       /user/password [post]
func (h *PasswordHandler) Change(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), userID, *req.OldPassword, *req.NewPassword); err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("rejected").Inc()
		return err
	}

	metrics.PasswordChangesTotal.WithLabelValues("changed").Inc()
	return respond(c, http.StatusCreated, struct{}{})
}
