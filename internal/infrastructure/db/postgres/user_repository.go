package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

const userColumns = `id, username, email, confirm_user, created_at, updated_at`

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and its password row in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *domain.User, passwordHash string) (*domain.User, error) {
	created := *user
	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO users (username, email, confirm_user, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			user.Username, user.Email, user.ConfirmUser, user.CreatedAt, user.UpdatedAt,
		).Scan(&created.ID)
		if err != nil {
			return conflictFromError(err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO passwords (user_id, password_hash, updated_at)
			 VALUES ($1, $2, $3)`,
			created.ID, passwordHash, user.CreatedAt,
		)
		return err
	})
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &created, nil
}

// FindByID returns the user with id, or domain.ErrUserNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByUsername looks a user up by exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// FindByEmail looks a user up by exact email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Update writes the mutable profile fields and returns the stored row.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	updated := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET username = $2, email = $3, confirm_user = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+userColumns,
		user.ID, user.Username, user.Email, user.ConfirmUser, user.UpdatedAt,
	).Scan(&updated.ID, &updated.Username, &updated.Email, &updated.ConfirmUser, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		var conflict *domain.ConflictError
		if errors.As(conflictFromError(err), &conflict) {
			return nil, conflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

// Delete removes the user, or returns domain.ErrUserNotFound when no row
// matched. The password and token rows cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.ConfirmUser, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
