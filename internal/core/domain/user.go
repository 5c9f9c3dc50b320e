package domain

import "time"

// User models a registered account. PasswordHash lives in Credential and is
// never part of the public projection.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	ConfirmUser bool      `json:"confirm_user"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Credential is the single password record owned by a user.
type Credential struct {
	UserID       int64
	PasswordHash string
	UpdatedAt    time.Time
}

// AuthToken is the latest token issued to a user. There is at most one per user.
type AuthToken struct {
	UserID    int64
	Token     string
	CreatedAt time.Time
}

// Claims is the verified payload of a bearer token.
type Claims struct {
	UserID    int64
	ExpiresAt time.Time
}
