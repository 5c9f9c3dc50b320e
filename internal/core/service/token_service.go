package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

const defaultTokenTTL = 72 * time.Hour

// TokenService issues HS256 bearer tokens and keeps the latest one per user.
type TokenService struct {
	repo   ports.TokenRepository
	cache  ports.TokenCache
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithTokenCache puts cache in front of the token repository.
func WithTokenCache(cache ports.TokenCache) TokenOption {
	return func(s *TokenService) { s.cache = cache }
}

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenService(repo ports.TokenRepository, secret string, ttl time.Duration, log zerolog.Logger, opts ...TokenOption) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	s := &TokenService{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a new token for userID and stores it as the user's only active token.
func (s *TokenService) Issue(ctx context.Context, userID int64) (string, error) {
	token, err := s.generateToken(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w: %v", domain.ErrInternal, err)
	}

	if err := s.repo.Upsert(ctx, userID, token); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, token, s.ttl); err != nil {
			s.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to cache token, evicting stale entry")
			// A stale cached token would still pass IsActive; without it the store answers.
			if err := s.evict(ctx, userID); err != nil {
				return "", fmt.Errorf("issue token: %w", err)
			}
		}
	}
	return token, nil
}

// Verify checks signature, required claims and expiry. It does not consult
// the store; a revoked token still verifies.
func (s *TokenService) Verify(raw string) (*domain.Claims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if claims.Subject == "" {
		return nil, domain.ErrTokenClaimMissing
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, domain.ErrTokenMalformed
	}

	return &domain.Claims{UserID: userID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Revoke deletes the user's stored token and its cached copy. Revoking twice
// is not an error; failing to evict the cached copy is.
func (s *TokenService) Revoke(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if err := s.evict(ctx, userID); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsActive reports whether raw is the token currently stored for userID.
func (s *TokenService) IsActive(ctx context.Context, userID int64, raw string) (bool, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		switch {
		case err == nil:
			return tokensEqual(cached, raw), nil
		case errors.Is(err, domain.ErrTokenNotFound):
		default:
			s.log.Warn().Err(err).Int64("user_id", userID).Msg("token cache lookup failed, using store")
		}
	}

	stored, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup token: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, stored.Token, s.ttl); err != nil {
			s.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to cache token")
		}
	}
	return tokensEqual(stored.Token, raw), nil
}

func (s *TokenService) evict(ctx context.Context, userID int64) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("failed to evict cached token")
		return fmt.Errorf("evict cached token: %w", err)
	}
	return nil
}

func (s *TokenService) generateToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return domain.ErrTokenClaimMissing
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenSignature
	default:
		return domain.ErrTokenMalformed
	}
}

func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
