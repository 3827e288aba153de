package push

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minnowkids/minnow-push-api/databases/mocks"
	"github.com/minnowkids/minnow-push-api/models"
)

func dtPtr(t time.Time) *primitive.DateTime {
	dt := primitive.NewDateTimeFromTime(t)
	return &dt
}

func TestMatchesAudience(t *testing.T) {
	now := time.Now()
	recent := dtPtr(now.Add(-10 * 24 * time.Hour))
	stale := dtPtr(now.Add(-120 * 24 * time.Hour))

	sub := models.PushSubscription{UserID: "u1"}
	anon := models.PushSubscription{}

	tests := []struct {
		name     string
		campaign models.Campaign
		sub      models.PushSubscription
		owner    *models.User
		want     bool
	}{
		{"all matches anonymous", models.Campaign{Audience: models.AudienceAll}, anon, nil, true},
		{"all matches known user", models.Campaign{Audience: models.AudienceAll}, sub, &models.User{ID: "u1"}, true},
		{"admins requires admin flag", models.Campaign{Audience: models.AudienceAdmins}, sub, &models.User{ID: "u1", IsAdmin: true}, true},
		{"admins rejects non-admin", models.Campaign{Audience: models.AudienceAdmins}, sub, &models.User{ID: "u1"}, false},
		{"admins rejects anonymous", models.Campaign{Audience: models.AudienceAdmins}, anon, nil, false},
		{"active inside window", models.Campaign{Audience: models.AudienceActive}, sub, &models.User{ID: "u1", LastOrderAt: recent}, true},
		{"active outside window", models.Campaign{Audience: models.AudienceActive}, sub, &models.User{ID: "u1", LastOrderAt: stale}, false},
		{"active with no orders", models.Campaign{Audience: models.AudienceActive}, sub, &models.User{ID: "u1"}, false},
		{"inactive outside window", models.Campaign{Audience: models.AudienceInactive}, sub, &models.User{ID: "u1", LastOrderAt: stale}, true},
		{"inactive with no orders", models.Campaign{Audience: models.AudienceInactive}, sub, &models.User{ID: "u1"}, true},
		{"inactive inside window", models.Campaign{Audience: models.AudienceInactive}, sub, &models.User{ID: "u1", LastOrderAt: recent}, false},
		{"category interest match", models.Campaign{Audience: models.AudienceCategory, CategorySlug: "rompers"}, sub, &models.User{ID: "u1", CategoryInterests: []string{"hats", "rompers"}}, true},
		{"category interest miss", models.Campaign{Audience: models.AudienceCategory, CategorySlug: "rompers"}, sub, &models.User{ID: "u1", CategoryInterests: []string{"hats"}}, false},
		{"category without slug", models.Campaign{Audience: models.AudienceCategory}, sub, &models.User{ID: "u1", CategoryInterests: []string{"hats"}}, false},
		{"abandoned cart", models.Campaign{Audience: models.AudienceAbandonedCart}, sub, &models.User{ID: "u1", HasAbandonedCart: true}, true},
		{"abandoned cart cleared", models.Campaign{Audience: models.AudienceAbandonedCart}, sub, &models.User{ID: "u1"}, false},
		{"unknown segment matches nothing", models.Campaign{Audience: "vip"}, sub, &models.User{ID: "u1", IsAdmin: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchesAudience(&tt.campaign, tt.sub, tt.owner)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveChannelFilter(t *testing.T) {
	subsDB := &mocks.SubscriptionDatabase{}
	subsDB.On("Find", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		f, ok := filter.(bson.M)
		if !ok || f["isActive"] != true {
			return false
		}
		platform, ok := f["platform"].(bson.M)
		if !ok {
			return false
		}
		channels, ok := platform["$in"].([]string)
		return ok && len(channels) == 1 && channels[0] == models.PlatformWeb
	})).Return([]models.PushSubscription{}, nil)

	r := &Resolver{Subscriptions: subsDB}
	campaign := &models.Campaign{
		ID:       primitive.NewObjectID(),
		Audience: models.AudienceAll,
		Channels: []string{models.PlatformWeb},
	}

	got, err := r.Resolve(context.Background(), campaign, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	subsDB.AssertExpectations(t)
}

func TestResolveRetryNarrowsToFailed(t *testing.T) {
	subA := models.PushSubscription{ID: primitive.NewObjectID(), Token: "a", IsActive: true}
	subB := models.PushSubscription{ID: primitive.NewObjectID(), Token: "b", IsActive: true}
	subC := models.PushSubscription{ID: primitive.NewObjectID(), Token: "c", IsActive: true}

	subsDB := &mocks.SubscriptionDatabase{}
	subsDB.On("Find", mock.Anything, mock.Anything).Return([]models.PushSubscription{subA, subB, subC}, nil)

	campaign := &models.Campaign{ID: primitive.NewObjectID(), Audience: models.AudienceAll}

	deliveries := &mocks.DeliveryDatabase{}
	deliveries.On("FailedSubscriptionIDs", mock.Anything, campaign.ID).
		Return([]primitive.ObjectID{subB.ID, subC.ID}, nil)

	r := &Resolver{Subscriptions: subsDB, Deliveries: deliveries}

	got, err := r.Resolve(context.Background(), campaign, true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, subB.ID, got[0].ID)
	assert.Equal(t, subC.ID, got[1].ID)
}

func TestResolveRetryWithNoFailures(t *testing.T) {
	sub := models.PushSubscription{ID: primitive.NewObjectID(), Token: "a", IsActive: true}

	subsDB := &mocks.SubscriptionDatabase{}
	subsDB.On("Find", mock.Anything, mock.Anything).Return([]models.PushSubscription{sub}, nil)

	campaign := &models.Campaign{ID: primitive.NewObjectID(), Audience: models.AudienceAll}

	deliveries := &mocks.DeliveryDatabase{}
	deliveries.On("FailedSubscriptionIDs", mock.Anything, campaign.ID).
		Return([]primitive.ObjectID{}, nil)

	r := &Resolver{Subscriptions: subsDB, Deliveries: deliveries}

	got, err := r.Resolve(context.Background(), campaign, true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveSegmentUsesOwnerMetadata(t *testing.T) {
	adminSub := models.PushSubscription{ID: primitive.NewObjectID(), UserID: "admin-1", IsActive: true}
	shopperSub := models.PushSubscription{ID: primitive.NewObjectID(), UserID: "shopper-1", IsActive: true}

	subsDB := &mocks.SubscriptionDatabase{}
	subsDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.PushSubscription{adminSub, shopperSub}, nil)

	usersDB := &mocks.UserDatabase{}
	usersDB.On("Find", mock.Anything, mock.Anything).Return([]models.User{
		{ID: "admin-1", IsAdmin: true},
		{ID: "shopper-1"},
	}, nil)

	r := &Resolver{Subscriptions: subsDB, Users: usersDB}
	campaign := &models.Campaign{ID: primitive.NewObjectID(), Audience: models.AudienceAdmins}

	got, err := r.Resolve(context.Background(), campaign, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, adminSub.ID, got[0].ID)
}
