package databases

// go generate: mockery --name DeliveryDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minnowkids/minnow-push-api/models"
)

const deliveryCollectionName = "deliveries"

// DeliveryDatabase contains the methods to use with the delivery database.
// Every write goes through an upsert on (campaignId, subscriptionId), so a
// retry overwrites the previous attempt instead of appending a second row.
type DeliveryDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Delivery, error)
	MarkQueued(ctx context.Context, campaignID, subscriptionID primitive.ObjectID) error
	MarkSent(ctx context.Context, campaignID, subscriptionID primitive.ObjectID, at time.Time) error
	MarkFailed(ctx context.Context, campaignID, subscriptionID primitive.ObjectID, errMsg string) error
	FailedSubscriptionIDs(ctx context.Context, campaignID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type deliveryDatabase struct {
	db DatabaseHelper
}

// NewDeliveryDatabase initializes a new instance of delivery database with the provided db connection
func NewDeliveryDatabase(db DatabaseHelper) DeliveryDatabase {
	return &deliveryDatabase{
		db: db,
	}
}

func (d *deliveryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	cur, err := d.db.Collection(deliveryCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (d *deliveryDatabase) upsert(ctx context.Context, campaignID, subscriptionID primitive.ObjectID, set bson.M) error {
	now := primitive.NewDateTimeFromTime(time.Now())
	set["updatedAt"] = now
	filter := bson.M{"campaignId": campaignID, "subscriptionId": subscriptionID}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)
	_, err := d.db.Collection(deliveryCollectionName).UpdateOne(ctx, filter, update, opts)
	return err
}

func (d *deliveryDatabase) MarkQueued(ctx context.Context, campaignID, subscriptionID primitive.ObjectID) error {
	return d.upsert(ctx, campaignID, subscriptionID, bson.M{
		"status":       models.DeliveryStatusQueued,
		"errorMessage": "",
	})
}

func (d *deliveryDatabase) MarkSent(ctx context.Context, campaignID, subscriptionID primitive.ObjectID, at time.Time) error {
	return d.upsert(ctx, campaignID, subscriptionID, bson.M{
		"status":       models.DeliveryStatusSent,
		"errorMessage": "",
		"sentAt":       primitive.NewDateTimeFromTime(at),
	})
}

func (d *deliveryDatabase) MarkFailed(ctx context.Context, campaignID, subscriptionID primitive.ObjectID, errMsg string) error {
	return d.upsert(ctx, campaignID, subscriptionID, bson.M{
		"status":       models.DeliveryStatusFailed,
		"errorMessage": errMsg,
	})
}

// FailedSubscriptionIDs returns the subscription ids whose latest delivery for
// the campaign is failed; the retry-only dispatch intersects its audience with
// this set.
func (d *deliveryDatabase) FailedSubscriptionIDs(ctx context.Context, campaignID primitive.ObjectID) ([]primitive.ObjectID, error) {
	deliveries, err := d.Find(ctx, bson.M{"campaignId": campaignID, "status": models.DeliveryStatusFailed})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(deliveries))
	for _, del := range deliveries {
		ids = append(ids, del.SubscriptionID)
	}
	return ids, nil
}
