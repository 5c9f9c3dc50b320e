package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

// CredentialRepository implements ports.CredentialRepository on PostgreSQL.
type CredentialRepository struct {
	db DBTX
}

func NewCredentialRepository(db DBTX) ports.CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Credential, error) {
	c := &domain.Credential{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, password_hash, updated_at FROM passwords WHERE user_id = $1`,
		userID,
	).Scan(&c.UserID, &c.PasswordHash, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// UpdateHash replaces the stored hash. No history is kept.
func (r *CredentialRepository) UpdateHash(ctx context.Context, userID int64, hash string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE passwords SET password_hash = $2, updated_at = $3 WHERE user_id = $1`,
		userID, hash, at,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}
