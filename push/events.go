package push

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
)

// EventWriter is the write side of the events outbox. Domain events like
// "order created" or "product restocked" are appended here for an external
// automation to drain into campaigns; no processing logic lives in this
// service.
type EventWriter struct {
	Events databases.EventDatabase
}

// QueueEvent appends one queued outbox row. The storage error is returned to
// the caller; nothing here blocks on queue draining.
func (w *EventWriter) QueueEvent(ctx context.Context, eventType string, payload map[string]interface{}, userID string) error {
	event := models.Event{
		ID:        primitive.NewObjectID(),
		EventType: eventType,
		Payload:   payload,
		UserID:    userID,
		Status:    models.EventStatusQueued,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err := w.Events.InsertOne(ctx, event)
	return err
}
