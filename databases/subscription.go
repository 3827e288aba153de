package databases

// go generate: mockery --name SubscriptionDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minnowkids/minnow-push-api/models"
)

const subscriptionCollectionName = "pushsubscriptions"

// SubscriptionDatabase contains the methods to use with the push subscription database
type SubscriptionDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.PushSubscription, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.PushSubscription, error)
	Upsert(context.Context, models.PushSubscription) error
	DeactivateByUser(context.Context, string) (int64, error)
}

type subscriptionDatabase struct {
	db DatabaseHelper
}

// NewSubscriptionDatabase initializes a new instance of subscription database with the provided db connection
func NewSubscriptionDatabase(db DatabaseHelper) SubscriptionDatabase {
	return &subscriptionDatabase{
		db: db,
	}
}

func (s *subscriptionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.PushSubscription, error) {
	sub := &models.PushSubscription{}
	err := s.db.Collection(subscriptionCollectionName).FindOne(ctx, filter, opts...).Decode(sub)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	cur, err := s.db.Collection(subscriptionCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Upsert writes a subscription using (userId, platform, deviceLabel) as the
// conflict target and always stamps updatedAt. Storage errors propagate so the
// client flow can treat the device as not subscribed.
func (s *subscriptionDatabase) Upsert(ctx context.Context, sub models.PushSubscription) error {
	now := primitive.NewDateTimeFromTime(time.Now())
	filter := bson.M{
		"userId":      sub.UserID,
		"platform":    sub.Platform,
		"deviceLabel": sub.DeviceLabel,
	}
	update := bson.M{
		"$set": bson.M{
			"token":     sub.Token,
			"email":     sub.Email,
			"isActive":  sub.IsActive,
			"metadata":  sub.Metadata,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.db.Collection(subscriptionCollectionName).UpdateOne(ctx, filter, update, opts)
	return err
}

// DeactivateByUser flips every active subscription for the user to inactive,
// used on logout so a retired session stops receiving pushes without losing
// the historical row. Returns the number of rows modified.
func (s *subscriptionDatabase) DeactivateByUser(ctx context.Context, userID string) (int64, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	filter := bson.M{"userId": userID, "isActive": true}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}}
	res, err := s.db.Collection(subscriptionCollectionName).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
