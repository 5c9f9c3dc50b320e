package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/accountkit/user-api/internal/core/domain"
)

// TokenCache keeps a copy of each user's active token.
// Key format: session:<user_id>
type TokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

// Get returns domain.ErrTokenNotFound when the key is absent.
func (c *TokenCache) Get(ctx context.Context, userID int64) (string, error) {
	tok, err := c.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("token cache get: %w", err)
	}
	return tok, nil
}

func (c *TokenCache) Set(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("token cache set: %w", err)
	}
	return nil
}

func (c *TokenCache) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("token cache delete: %w", err)
	}
	return nil
}

func key(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}
