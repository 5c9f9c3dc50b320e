package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type eventService struct {
	repo  ports.EventRepository
	dedup DedupChecker
	log   zerolog.Logger
}

// NewEventService returns an EventRecorder. dedup may be nil.
func NewEventService(repo ports.EventRepository, dedup DedupChecker, log zerolog.Logger) ports.EventRecorder {
	return &eventService{repo: repo, dedup: dedup, log: log}
}

// Record persists event once. Redelivered events with an ID already marked are skipped.
func (s *eventService) Record(ctx context.Context, event domain.AccountEvent) error {
	if event.ID == "" || event.UserID <= 0 || event.Kind == "" {
		return fmt.Errorf("record event: incomplete event %q", event.ID)
	}

	if s.dedup != nil {
		dup, err := s.dedup.IsDuplicate(ctx, event.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("dedup check failed, recording anyway")
		} else if dup {
			s.log.Debug().Str("event_id", event.ID).Msg("duplicate event skipped")
			return nil
		}
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, event.ID); err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to set dedup key")
		}
	}

	s.log.Debug().
		Int64("user_id", event.UserID).
		Str("kind", string(event.Kind)).
		Str("request_id", event.RequestID).
		Msg("account event recorded")
	return nil
}
