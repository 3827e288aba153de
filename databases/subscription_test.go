package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/databases/mocks"
	"github.com/minnowkids/minnow-push-api/models"
)

func TestSubscriptionUpsertUsesNaturalKey(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "pushsubscriptions").Return(conn)

	conn.On("UpdateOne",
		mock.Anything,
		mock.MatchedBy(func(filter interface{}) bool {
			f, ok := filter.(bson.M)
			return ok &&
				f["userId"] == "u1" &&
				f["platform"] == models.PlatformWeb &&
				f["deviceLabel"] == "default"
		}),
		mock.MatchedBy(func(update interface{}) bool {
			u, ok := update.(bson.M)
			if !ok {
				return false
			}
			set, ok := u["$set"].(bson.M)
			if !ok || set["token"] != "fresh-token" || set["isActive"] != true {
				return false
			}
			// createdAt only lands on insert so a re-sync keeps the original
			setOnInsert, ok := u["$setOnInsert"].(bson.M)
			return ok && setOnInsert["createdAt"] != nil
		}),
		mock.Anything,
	).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	subDB := databases.NewSubscriptionDatabase(db)
	err := subDB.Upsert(context.Background(), models.PushSubscription{
		UserID:      "u1",
		Platform:    models.PlatformWeb,
		DeviceLabel: "default",
		Token:       "fresh-token",
		IsActive:    true,
	})
	require.NoError(t, err)
	conn.AssertExpectations(t)
}

func TestSubscriptionUpsertSecondTokenWins(t *testing.T) {
	var lastToken string
	conn := &mocks.CollectionHelper{}
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "pushsubscriptions").Return(conn)

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			update := args.Get(2).(bson.M)
			lastToken = update["$set"].(bson.M)["token"].(string)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	subDB := databases.NewSubscriptionDatabase(db)
	sub := models.PushSubscription{UserID: "u1", Platform: models.PlatformWeb, DeviceLabel: "default", IsActive: true}

	sub.Token = "first"
	require.NoError(t, subDB.Upsert(context.Background(), sub))
	sub.Token = "second"
	require.NoError(t, subDB.Upsert(context.Background(), sub))

	assert.Equal(t, "second", lastToken)
	conn.AssertNumberOfCalls(t, "UpdateOne", 2)
}

func TestSubscriptionFindPropagatesDriverError(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "pushsubscriptions").Return(conn)

	conn.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset by peer"))

	subDB := databases.NewSubscriptionDatabase(db)
	subs, err := subDB.Find(context.Background(), bson.M{"isActive": true})
	require.Error(t, err)
	assert.Nil(t, subs)
}

func TestSubscriptionDeactivateByUser(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "pushsubscriptions").Return(conn)

	conn.On("UpdateMany",
		mock.Anything,
		mock.MatchedBy(func(filter interface{}) bool {
			f, ok := filter.(bson.M)
			return ok && f["userId"] == "u1" && f["isActive"] == true
		}),
		mock.MatchedBy(func(update interface{}) bool {
			u, ok := update.(bson.M)
			if !ok {
				return false
			}
			set, ok := u["$set"].(bson.M)
			return ok && set["isActive"] == false
		}),
	).Return(&mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, nil)

	subDB := databases.NewSubscriptionDatabase(db)
	modified, err := subDB.DeactivateByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), modified)
}
