package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schedulerLockCollectionName = "schedulerlocks"

// SchedulerLockDatabase provides a Mongo-backed distributed lock so scheduled
// jobs run on exactly one instance at a time
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock upserts the lock document if it is missing or its previous
// holder's TTL has expired. Returns false when another live instance holds it.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"jobName": jobName,
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}},
			{"instanceId": instanceID},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"instanceId": instanceID,
			"expiresAt":  primitive.NewDateTimeFromTime(now.Add(ttl)),
		},
		"$setOnInsert": bson.M{"jobName": jobName},
	}
	opts := options.Update().SetUpsert(true)
	res, err := s.db.Collection(schedulerLockCollectionName).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		// A duplicate-key race means another instance won the upsert;
		// anything else is a real storage failure the caller must see
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0 || res.MatchedCount > 0, nil
}

func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	filter := bson.M{"jobName": jobName, "instanceId": instanceID}
	update := bson.M{"$set": bson.M{"expiresAt": primitive.NewDateTimeFromTime(time.Now())}}
	_, err := s.db.Collection(schedulerLockCollectionName).UpdateOne(ctx, filter, update)
	return err
}
