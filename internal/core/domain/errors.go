package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenNotFound      = errors.New("token not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal error")

	// ErrUnauthorized covers every bearer token failure. The reasons below wrap
	// it so callers can match them as a group.
	ErrUnauthorized      = errors.New("authorization error")
	ErrTokenMissing      = fmt.Errorf("%w: missing token", ErrUnauthorized)
	ErrTokenMalformed    = fmt.Errorf("%w: malformed token", ErrUnauthorized)
	ErrTokenSignature    = fmt.Errorf("%w: invalid signature", ErrUnauthorized)
	ErrTokenClaimMissing = fmt.Errorf("%w: required claim missing", ErrUnauthorized)
	ErrTokenExpired      = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrTokenRevoked      = fmt.Errorf("%w: token revoked", ErrUnauthorized)
)

// ValidationError aggregates field-level failures, keyed by the request field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError reports a uniqueness violation detected by the store.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

// AsValidation converts the conflict into the field error shown to clients.
func (e *ConflictError) AsValidation() *ValidationError {
	ve := NewValidationError()
	switch e.Field {
	case "email":
		ve.Add("email", MsgEmailExists)
	default:
		ve.Add("username", MsgUserExists)
	}
	return ve
}
