package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

// AccountService implements registration, login and the self-service account operations.
type AccountService struct {
	users  ports.UserRepository
	creds  ports.CredentialRepository
	tokens ports.TokenService
	hasher *Credentials
	rules  *Rules
	events ports.EventPublisher
	now    func() time.Time
	log    zerolog.Logger
}

// NewAccountService wires the account workflows. events may be nil.
func NewAccountService(
	users ports.UserRepository,
	creds ports.CredentialRepository,
	tokens ports.TokenService,
	hasher *Credentials,
	events ports.EventPublisher,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:  users,
		creds:  creds,
		tokens: tokens,
		hasher: hasher,
		rules:  NewRules(),
		events: events,
		now:    time.Now,
		log:    log,
	}
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	ve := domain.NewValidationError()

	if s.rules.Username(ve, "username", in.Username) {
		if err := s.checkUsernameFree(ctx, ve, in.Username); err != nil {
			return nil, err
		}
	}
	if s.rules.Email(ve, "email", in.Email) {
		if err := s.checkEmailFree(ctx, ve, in.Email); err != nil {
			return nil, err
		}
	}
	s.rules.Password(ve, "password", in.Password)

	if !ve.Empty() {
		return nil, ve
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.users.Create(ctx, user, hash)
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict.AsValidation()
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	s.publish(ctx, created.ID, domain.EventRegistered)
	return created, nil
}

func (s *AccountService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := s.verifyPassword(ctx, user.ID, password); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", err
	}

	s.publish(ctx, user.ID, domain.EventAuthenticated)
	return token, nil
}

func (s *AccountService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies the supplied fields. Values equal to the current ones
// are accepted without a uniqueness check.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ve := domain.NewValidationError()
	changed := false

	if in.Username != nil && *in.Username != user.Username {
		if s.rules.Username(ve, "username", *in.Username) {
			if err := s.checkUsernameFree(ctx, ve, *in.Username); err != nil {
				return nil, err
			}
		}
		changed = true
	}
	if in.Email != nil && *in.Email != user.Email {
		if s.rules.Email(ve, "email", *in.Email) {
			if err := s.checkEmailFree(ctx, ve, *in.Email); err != nil {
				return nil, err
			}
		}
		changed = true
	}

	if !ve.Empty() {
		return nil, ve
	}
	if !changed {
		return user, nil
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	user.UpdatedAt = s.now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict.AsValidation()
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.publish(ctx, userID, domain.EventProfileUpdated)
	return updated, nil
}

// ChangePassword checks the new password's strength before the old password,
// so a weak replacement is reported even when the old password is wrong.
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	ve := domain.NewValidationError()
	if !s.rules.Password(ve, "new_password", newPassword) {
		return ve
	}

	if err := s.verifyPassword(ctx, userID, oldPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.creds.UpdateHash(ctx, userID, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Int64("user_id", userID).Msg("password changed")
	s.publish(ctx, userID, domain.EventPasswordChanged)
	return nil
}

// DeleteAccount removes the caller's account. username must name the caller.
func (s *AccountService) DeleteAccount(ctx context.Context, userID int64, username, password string) error {
	target, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID != userID {
		return domain.ErrUserNotFound
	}

	if err := s.verifyPassword(ctx, userID, password); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	// The token row is already gone with the user; this clears any cached copy.
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to revoke token after delete")
	}

	s.log.Info().Int64("user_id", userID).Msg("user deleted")
	s.publish(ctx, userID, domain.EventDeleted)
	return nil
}

func (s *AccountService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, userID, domain.EventLoggedOut)
	return nil
}

func (s *AccountService) verifyPassword(ctx context.Context, userID int64, password string) error {
	cred, err := s.creds.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if !s.hasher.Verify(password, cred.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (s *AccountService) checkUsernameFree(ctx context.Context, ve *domain.ValidationError, username string) error {
	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		ve.Add("username", domain.MsgUserExists)
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return fmt.Errorf("check username: %w", err)
	}
	return nil
}

func (s *AccountService) checkEmailFree(ctx context.Context, ve *domain.ValidationError, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		ve.Add("email", domain.MsgEmailExists)
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *AccountService) publish(ctx context.Context, userID int64, kind domain.AccountEventKind) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.AccountEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		OccurredAt: s.now().UTC(),
		RequestID:  domain.RequestIDFrom(ctx),
	})
}
