package ports

import (
	"context"
	"time"

	"github.com/accountkit/user-api/internal/core/domain"
)

// UserRepository defines persistence for user records.
type UserRepository interface {
	// Create inserts the user and its credential in a single transaction.
	// A uniqueness violation is reported as *domain.ConflictError.
	Create(ctx context.Context, user *domain.User, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update writes username, email and confirm_user and bumps updated_at.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes the user; credential and token rows go with it.
	Delete(ctx context.Context, id int64) error
}

// CredentialRepository defines persistence for password hashes.
type CredentialRepository interface {
	FindByUserID(ctx context.Context, userID int64) (*domain.Credential, error)
	UpdateHash(ctx context.Context, userID int64, hash string, at time.Time) error
}

// TokenRepository stores the single active token per user.
type TokenRepository interface {
	// Upsert creates or overwrites the user's token.
	Upsert(ctx context.Context, userID int64, token string) error
	FindByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error)
	Delete(ctx context.Context, userID int64) error
}

// TokenCache is an optional fast path in front of TokenRepository.
type TokenCache interface {
	// Get returns domain.ErrTokenNotFound on a cache miss.
	Get(ctx context.Context, userID int64) (string, error)
	Set(ctx context.Context, userID int64, token string, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
}
