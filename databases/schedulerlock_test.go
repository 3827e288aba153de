package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/databases/mocks"
)

func lockMocks(t *testing.T) (*mocks.DatabaseHelper, *mocks.CollectionHelper) {
	t.Helper()
	conn := &mocks.CollectionHelper{}
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "schedulerlocks").Return(conn)
	return db, conn
}

func TestTryAcquireLockAcquires(t *testing.T) {
	db, conn := lockMocks(t)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)

	ldb := databases.NewSchedulerLockDatabase(db)
	acquired, err := ldb.TryAcquireLock(context.Background(), "scheduled_campaign_job", "web.1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestTryAcquireLockDuplicateKeyRace(t *testing.T) {
	db, conn := lockMocks(t)
	dupErr := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, dupErr)

	ldb := databases.NewSchedulerLockDatabase(db)
	acquired, err := ldb.TryAcquireLock(context.Background(), "scheduled_campaign_job", "web.1", 10*time.Minute)
	// losing the upsert race to another instance is not an error
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestTryAcquireLockStorageError(t *testing.T) {
	db, conn := lockMocks(t)
	outage := errors.New("no reachable servers")
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, outage)

	ldb := databases.NewSchedulerLockDatabase(db)
	acquired, err := ldb.TryAcquireLock(context.Background(), "scheduled_campaign_job", "web.1", 10*time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, outage)
	assert.False(t, acquired)
}
