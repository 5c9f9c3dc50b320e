package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/accountkit/user-api/internal/core/domain"
)

// Credentials hashes and verifies passwords with bcrypt at a fixed cost.
type Credentials struct {
	cost int
}

// NewCredentials returns a Credentials hasher. Costs outside bcrypt's range
// fall back to bcrypt.DefaultCost.
func NewCredentials(cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Two calls with the same
// input never return the same string.
func (c *Credentials) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w: %v", domain.ErrInternal, err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches storedHash. A malformed hash is a mismatch.
func (c *Credentials) Verify(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
