package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

// TokenRepository implements ports.TokenRepository on PostgreSQL.
// The unique user_id constraint keeps a single row per user.
type TokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) ports.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Upsert(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (user_id, token, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, created_at = EXCLUDED.created_at`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	t := &domain.AuthToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, token, created_at FROM auth_tokens WHERE user_id = $1`,
		userID,
	).Scan(&t.UserID, &t.Token, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Delete removes the user's token. Deleting a missing token is not an error.
func (r *TokenRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
