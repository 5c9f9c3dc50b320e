package ports

import (
	"context"

	"github.com/accountkit/user-api/internal/core/domain"
)

// EventRepository persists account events to the audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AccountEvent) error
}
