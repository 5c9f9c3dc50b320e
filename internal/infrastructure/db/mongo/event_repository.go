package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

const eventsCollection = "account_events"

type eventDocument struct {
	ID         string    `bson:"_id"`
	UserID     int64     `bson:"user_id"`
	Kind       string    `bson:"kind"`
	OccurredAt time.Time `bson:"occurred_at"`
	RequestID  string    `bson:"request_id,omitempty"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{coll: db.Collection(eventsCollection), now: time.Now}
}

// InsertEvent appends event to the account_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AccountEvent) error {
	doc := eventDocument{
		ID:         event.ID,
		UserID:     event.UserID,
		Kind:       string(event.Kind),
		OccurredAt: event.OccurredAt.UTC(),
		RequestID:  event.RequestID,
		RecordedAt: r.now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert account event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the per-user timeline index used when reading a user's history.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(eventsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}},
		Options: options.Index().SetName("user_timeline"),
	})
	if err != nil {
		return fmt.Errorf("create account_events index: %w", err)
	}
	return nil
}
