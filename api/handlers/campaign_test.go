package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minnowkids/minnow-push-api/api/handlers"
	"github.com/minnowkids/minnow-push-api/databases/mocks"
	"github.com/minnowkids/minnow-push-api/models"
	"github.com/minnowkids/minnow-push-api/push"
)

// fakeDispatcher records the dispatch call and returns a canned result
type fakeDispatcher struct {
	lastID    primitive.ObjectID
	lastRetry bool
	callCount int
	result    *push.DispatchResult
	err       error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, campaignID primitive.ObjectID, retryFailedOnly bool) (*push.DispatchResult, error) {
	f.callCount++
	f.lastID = campaignID
	f.lastRetry = retryFailedOnly
	if f.result != nil {
		f.result.CampaignID = campaignID
	}
	return f.result, f.err
}

func TestCampaign_CreateCampaignHandlerSendNow(t *testing.T) {
	cdb := &mocks.CampaignDatabase{}
	cdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(c models.Campaign) bool {
		// a send-now campaign is persisted as sending before dispatch runs
		return c.Status == models.CampaignStatusSending && c.ScheduleFor == nil
	})).Return(nil, nil)

	dispatcher := &fakeDispatcher{result: &push.DispatchResult{
		Status:    models.CampaignStatusCompleted,
		Total:     3,
		Delivered: 3,
	}}

	body := `{"title": "Flash sale", "body": "40% off today", "audience": "all", "send_now": true}`
	req := httptest.NewRequest("POST", "/api/v1/campaigns", strings.NewReader(body))
	rr := httptest.NewRecorder()

	c := handlers.Campaign{CDB: cdb, Engine: dispatcher}
	http.HandlerFunc(c.CreateCampaignHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, dispatcher.callCount)
	assert.False(t, dispatcher.lastRetry)

	var resp struct {
		Campaign models.Campaign      `json:"campaign"`
		Result   *push.DispatchResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.CampaignStatusCompleted, resp.Campaign.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 3, resp.Result.Delivered)
	cdb.AssertExpectations(t)
}

func TestCampaign_CreateCampaignHandlerScheduled(t *testing.T) {
	cdb := &mocks.CampaignDatabase{}
	cdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(c models.Campaign) bool {
		return c.Status == models.CampaignStatusScheduled && c.ScheduleFor != nil
	})).Return(nil, nil)

	dispatcher := &fakeDispatcher{}

	body := `{"title": "Weekend drop", "body": "New arrivals", "audience": "active", "schedule_for": "2026-09-05T09:00:00Z"}`
	req := httptest.NewRequest("POST", "/api/v1/campaigns", strings.NewReader(body))
	rr := httptest.NewRecorder()

	c := handlers.Campaign{CDB: cdb, Engine: dispatcher}
	http.HandlerFunc(c.CreateCampaignHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 0, dispatcher.callCount)
	cdb.AssertExpectations(t)
}

func TestCampaign_CreateCampaignHandlerStorageError(t *testing.T) {
	cdb := &mocks.CampaignDatabase{}
	cdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("write concern error"))

	dispatcher := &fakeDispatcher{}

	body := `{"title": "Flash sale", "body": "40% off today", "audience": "all", "send_now": true}`
	req := httptest.NewRequest("POST", "/api/v1/campaigns", strings.NewReader(body))
	rr := httptest.NewRecorder()

	c := handlers.Campaign{CDB: cdb, Engine: dispatcher}
	http.HandlerFunc(c.CreateCampaignHandler).ServeHTTP(rr, req)

	// a campaign that never landed in storage must not report created or dispatch
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 0, dispatcher.callCount)
}

func TestCampaign_CreateCampaignHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"body": "b", "send_now": true}`},
		{"missing body", `{"title": "t", "send_now": true}`},
		{"unknown audience", `{"title": "t", "body": "b", "audience": "vip", "send_now": true}`},
		{"scheduled without time", `{"title": "t", "body": "b", "audience": "all"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cdb := &mocks.CampaignDatabase{}
			dispatcher := &fakeDispatcher{}

			req := httptest.NewRequest("POST", "/api/v1/campaigns", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			c := handlers.Campaign{CDB: cdb, Engine: dispatcher}
			http.HandlerFunc(c.CreateCampaignHandler).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			cdb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
			assert.Equal(t, 0, dispatcher.callCount)
		})
	}
}

func TestCampaign_RetryCampaignHandler(t *testing.T) {
	campaignID := primitive.NewObjectID()
	dispatcher := &fakeDispatcher{result: &push.DispatchResult{
		Status:    models.CampaignStatusCompleted,
		Total:     2,
		Delivered: 2,
	}}

	req := httptest.NewRequest("POST", "/api/v1/campaigns/"+campaignID.Hex()+"/retry", nil)
	req = mux.SetURLVars(req, map[string]string{"campaign_id": campaignID.Hex()})
	rr := httptest.NewRecorder()

	c := handlers.Campaign{Engine: dispatcher}
	http.HandlerFunc(c.RetryCampaignHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, campaignID, dispatcher.lastID)
	assert.True(t, dispatcher.lastRetry)
}

func TestCampaign_RetryCampaignHandlerBadID(t *testing.T) {
	dispatcher := &fakeDispatcher{}

	req := httptest.NewRequest("POST", "/api/v1/campaigns/nope/retry", nil)
	req = mux.SetURLVars(req, map[string]string{"campaign_id": "nope"})
	rr := httptest.NewRecorder()

	c := handlers.Campaign{Engine: dispatcher}
	http.HandlerFunc(c.RetryCampaignHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, dispatcher.callCount)
}

func TestCampaign_CampaignByIDHandler(t *testing.T) {
	campaignID := primitive.NewObjectID()
	cdb := &mocks.CampaignDatabase{}
	cdb.On("FindOne", mock.Anything, mock.Anything).Return(&models.Campaign{
		ID:     campaignID,
		Title:  "Welcome series",
		Status: models.CampaignStatusCompleted,
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/campaigns/"+campaignID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"campaign_id": campaignID.Hex()})
	rr := httptest.NewRecorder()

	c := handlers.Campaign{CDB: cdb}
	http.HandlerFunc(c.CampaignByIDHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Welcome series")
}

func TestCampaign_CampaignDeliveriesHandler(t *testing.T) {
	campaignID := primitive.NewObjectID()
	ddb := &mocks.DeliveryDatabase{}
	ddb.On("Find", mock.Anything, mock.Anything).Return([]models.Delivery{
		{CampaignID: campaignID, Status: models.DeliveryStatusSent},
		{CampaignID: campaignID, Status: models.DeliveryStatusFailed, ErrorMessage: "UNREGISTERED"},
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/campaigns/"+campaignID.Hex()+"/deliveries", nil)
	req = mux.SetURLVars(req, map[string]string{"campaign_id": campaignID.Hex()})
	rr := httptest.NewRecorder()

	c := handlers.Campaign{DDB: ddb}
	http.HandlerFunc(c.CampaignDeliveriesHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNREGISTERED")
}
