package ports

import (
	"context"

	"github.com/accountkit/user-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput carries a partial profile update; nil fields are left untouched.
type UpdateProfileInput struct {
	Username *string
	Email    *string
}

// AccountService orchestrates the lifecycle of a user's authentication material.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Authenticate verifies username+password and returns a freshly issued token.
	Authenticate(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	// DeleteAccount requires username and password of the authenticated user.
	DeleteAccount(ctx context.Context, userID int64, username, password string) error
	Logout(ctx context.Context, userID int64) error
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Verify(raw string) (*domain.Claims, error)
	Revoke(ctx context.Context, userID int64) error
	IsActive(ctx context.Context, userID int64, raw string) (bool, error)
}
