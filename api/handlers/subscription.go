package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/config"
	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
)

// Subscription exported for testing purposes
type Subscription struct {
	DB databases.SubscriptionDatabase
}

type syncSubscriptionRequest struct {
	UserID      string            `json:"userId"`
	Email       string            `json:"email,omitempty"`
	Platform    string            `json:"platform"`
	Token       string            `json:"token"`
	DeviceLabel string            `json:"deviceLabel"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// SyncSubscriptionHandler registers or refreshes a device subscription. The
// client calls this on login with a fresh provider token; the natural key
// (userId, platform, deviceLabel) means a re-sync updates the existing row.
func (s Subscription) SyncSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	var req syncSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode subscription body", http.StatusBadRequest, w, err)
		return
	}

	// never write a partial/garbage record
	if req.Token == "" {
		config.ErrorStatus("subscription token is required", http.StatusBadRequest, w, errors.New("empty token"))
		return
	}
	if req.Platform != models.PlatformWeb && req.Platform != models.PlatformAndroid && req.Platform != models.PlatformIOS {
		config.ErrorStatus("unknown subscription platform", http.StatusBadRequest, w, errors.New("platform: "+req.Platform))
		return
	}
	if req.DeviceLabel == "" {
		req.DeviceLabel = "default"
	}

	sub := models.PushSubscription{
		UserID:      req.UserID,
		Email:       req.Email,
		Platform:    req.Platform,
		Token:       req.Token,
		DeviceLabel: req.DeviceLabel,
		Metadata:    req.Metadata,
		IsActive:    true,
	}

	if err := s.DB.Upsert(r.Context(), sub); err != nil {
		config.ErrorStatus("failed to upsert subscription", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugw("subscription synced",
		"userId", req.UserID,
		"platform", req.Platform,
		"deviceLabel", req.DeviceLabel,
	)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"subscribed": true}`))
}

// DeactivateByUserHandler flips every active subscription for a user to
// inactive; called on logout. The historical rows are kept.
func (s Subscription) DeactivateByUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if userID == "" {
		config.ErrorStatus("user_id is required", http.StatusBadRequest, w, errors.New("empty user_id"))
		return
	}

	modified, err := s.DB.DeactivateByUser(r.Context(), userID)
	if err != nil {
		config.ErrorStatus("failed to deactivate subscriptions", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]int64{"deactivated": modified})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SubscriptionsByUserIDHandler returns all subscriptions for a user
func (s Subscription) SubscriptionsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	dbResp, err := s.DB.Find(r.Context(), bson.M{"userId": userID})
	if err != nil {
		config.ErrorStatus("failed to get subscriptions by user ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.PushSubscription{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
