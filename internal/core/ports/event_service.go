package ports

import (
	"context"

	"github.com/accountkit/user-api/internal/core/domain"
)

// EventPublisher hands account events to the audit pipeline. Implementations
// must not block the request path.
type EventPublisher interface {
	Publish(event domain.AccountEvent)
}

// EventRecorder writes a single account event to the audit trail.
type EventRecorder interface {
	Record(ctx context.Context, event domain.AccountEvent) error
}
