package domain

import "time"

// AccountEventKind names a lifecycle transition recorded in the audit trail.
type AccountEventKind string

const (
	EventRegistered      AccountEventKind = "registered"
	EventAuthenticated   AccountEventKind = "authenticated"
	EventProfileUpdated  AccountEventKind = "profile_updated"
	EventPasswordChanged AccountEventKind = "password_changed"
	EventLoggedOut       AccountEventKind = "logged_out"
	EventDeleted         AccountEventKind = "deleted"
)

// AccountEvent is a single audit record for a user's authentication material.
type AccountEvent struct {
	ID         string
	UserID     int64
	Kind       AccountEventKind
	OccurredAt time.Time
	RequestID  string
}
