package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/minnowkids/minnow-push-api/api/handlers"
	"github.com/minnowkids/minnow-push-api/databases/mocks"
	"github.com/minnowkids/minnow-push-api/models"
	"github.com/minnowkids/minnow-push-api/push"
)

func TestEvent_QueueEventHandler(t *testing.T) {
	db := &mocks.EventDatabase{}
	db.On("InsertOne", mock.Anything, mock.MatchedBy(func(ev models.Event) bool {
		return ev.EventType == "order_created" &&
			ev.Status == models.EventStatusQueued &&
			ev.UserID == "u1" &&
			ev.Payload["orderId"] == "o-42"
	})).Return(nil, nil)

	body := `{"eventType": "order_created", "userId": "u1", "payload": {"orderId": "o-42"}}`
	req := httptest.NewRequest("POST", "/api/v1/events", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h := handlers.Event{Writer: &push.EventWriter{Events: db}}
	http.HandlerFunc(h.QueueEventHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"queued": true}`, rr.Body.String())
	db.AssertExpectations(t)
}

func TestEvent_QueueEventHandlerRequiresType(t *testing.T) {
	db := &mocks.EventDatabase{}

	body := `{"payload": {"orderId": "o-42"}}`
	req := httptest.NewRequest("POST", "/api/v1/events", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h := handlers.Event{Writer: &push.EventWriter{Events: db}}
	http.HandlerFunc(h.QueueEventHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}
