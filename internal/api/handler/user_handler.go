package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accountkit/user-api/internal/api/metrics"
	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type deleteAccountRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  successEnvelope{data=domain.User}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      500   {object}  ErrorEnvelope
// @Router       /user [put]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return respond(c, http.StatusCreated, user)
}

// Profile returns the authenticated user's public profile.
//
// @Summary      Current user profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successEnvelope{data=domain.User}
// @Failure      401  {object}  ErrorEnvelope
// @Router       /user [get]
func (h *UserHandler) Profile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.accounts.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// UpdateProfile changes the authenticated user's username and/or email.
// Validation failures are reported with 404.
//
// @Summary      Update profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  successEnvelope{data=domain.User}
// @Failure      401   {object}  ErrorEnvelope
// @Failure      404   {object}  ErrorEnvelope
// @Router       /user [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.accounts.UpdateProfile(c.Request().Context(), userID, ports.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusNotFound, ve.Fields)
		}
		return err
	}
	return respond(c, http.StatusOK, user)
}

// Delete removes the authenticated user's account. The body must repeat the
// user's own username and password.
//
// @Summary      Delete account
// @Tags         user
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  deleteAccountRequest  true  "Own username and password"
// @Success      204
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Failure      404   {object}  ErrorEnvelope
// @Router       /user [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req deleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accounts.DeleteAccount(c.Request().Context(), userID, *req.Username, *req.Password); err != nil {
		return err
	}

	metrics.AccountsDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
