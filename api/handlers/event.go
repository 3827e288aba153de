package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minnowkids/minnow-push-api/config"
	"github.com/minnowkids/minnow-push-api/push"
)

// Event exported for testing purposes
type Event struct {
	Writer *push.EventWriter
}

type queueEventRequest struct {
	EventType string                 `json:"eventType"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	UserID    string                 `json:"userId,omitempty"`
}

// QueueEventHandler appends a domain event to the outbox. The storefront calls
// this on order creation, restocks and the like; an external automation drains
// the queue into campaigns.
func (e Event) QueueEventHandler(w http.ResponseWriter, r *http.Request) {
	var req queueEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode event body", http.StatusBadRequest, w, err)
		return
	}

	if req.EventType == "" {
		config.ErrorStatus("eventType is required", http.StatusBadRequest, w, errors.New("empty eventType"))
		return
	}

	if err := e.Writer.QueueEvent(r.Context(), req.EventType, req.Payload, req.UserID); err != nil {
		config.ErrorStatus("failed to queue event", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"queued": true}`))
}
