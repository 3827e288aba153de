package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// EventStatusQueued is the only status this service writes; an external
// automation drains queued events into campaigns.
const EventStatusQueued = "queued"

// Event holds the structure for the events collection in mongo (outbox rows
// like "order created" or "product restocked")
type Event struct {
	ID        primitive.ObjectID     `json:"_id" bson:"_id,omitempty"`
	EventType string                 `json:"eventType" bson:"eventType"`
	Payload   map[string]interface{} `json:"payload" bson:"payload"`
	UserID    string                 `json:"userId,omitempty" bson:"userId,omitempty"`
	Status    string                 `json:"status" bson:"status"`
	CreatedAt primitive.DateTime     `json:"createdAt" bson:"createdAt"`
}
