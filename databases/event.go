package databases

// go generate: mockery --name EventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minnowkids/minnow-push-api/models"
)

const eventCollectionName = "events"

// EventDatabase contains the methods to use with the events outbox collection
type EventDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Event, error)
	InsertOne(context.Context, models.Event) (InsertOneResultHelper, error)
}

type eventDatabase struct {
	db DatabaseHelper
}

// NewEventDatabase initializes a new instance of event database with the provided db connection
func NewEventDatabase(db DatabaseHelper) EventDatabase {
	return &eventDatabase{
		db: db,
	}
}

func (e *eventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Event, error) {
	var events []models.Event
	cur, err := e.db.Collection(eventCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

func (e *eventDatabase) InsertOne(ctx context.Context, event models.Event) (InsertOneResultHelper, error) {
	return e.db.Collection(eventCollectionName).InsertOne(ctx, event)
}
