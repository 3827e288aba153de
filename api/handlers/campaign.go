package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/api"
	"github.com/minnowkids/minnow-push-api/config"
	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
	"github.com/minnowkids/minnow-push-api/push"
)

// Dispatcher launches one dispatch attempt for a campaign
type Dispatcher interface {
	Dispatch(ctx context.Context, campaignID primitive.ObjectID, retryFailedOnly bool) (*push.DispatchResult, error)
}

// Campaign exported for testing purposes
type Campaign struct {
	CDB    databases.CampaignDatabase
	DDB    databases.DeliveryDatabase
	Engine Dispatcher
}

// composerInput is the campaign composer payload
type composerInput struct {
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	ImageURL     string     `json:"image_url,omitempty"`
	Deeplink     string     `json:"deeplink,omitempty"`
	Audience     string     `json:"audience"`
	CategorySlug string     `json:"category_slug,omitempty"`
	SendNow      bool       `json:"send_now"`
	ScheduleFor  *time.Time `json:"schedule_for,omitempty"`
	Channels     []string   `json:"channels"`
	CreatedBy    string     `json:"created_by,omitempty"`
}

type createCampaignResponse struct {
	Campaign models.Campaign      `json:"campaign"`
	Result   *push.DispatchResult `json:"result,omitempty"`
}

// CreateCampaignHandler persists a campaign from composer input. A send-now
// campaign is persisted as sending and dispatched synchronously before the
// response; otherwise it is stored as scheduled for the cron launcher.
func (c Campaign) CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	var in composerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		config.ErrorStatus("failed to decode campaign body", http.StatusBadRequest, w, err)
		return
	}

	if in.Title == "" || in.Body == "" {
		config.ErrorStatus("campaign title and body are required", http.StatusBadRequest, w, errors.New("missing title or body"))
		return
	}
	if in.Audience == "" {
		in.Audience = models.AudienceAll
	}
	if !models.ValidAudience(in.Audience) {
		config.ErrorStatus("unknown campaign audience", http.StatusBadRequest, w, errors.New("audience: "+in.Audience))
		return
	}
	if !in.SendNow && in.ScheduleFor == nil {
		config.ErrorStatus("schedule_for is required unless send_now is set", http.StatusBadRequest, w, errors.New("missing schedule_for"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	campaign := models.Campaign{
		ID:           primitive.NewObjectID(),
		Title:        in.Title,
		Body:         in.Body,
		ImageURL:     in.ImageURL,
		Deeplink:     in.Deeplink,
		Audience:     in.Audience,
		Channels:     in.Channels,
		CategorySlug: in.CategorySlug,
		Status:       models.CampaignStatusScheduled,
		Metrics:      models.CampaignMetrics{},
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.SendNow {
		// send-now skips scheduled and goes straight to sending
		campaign.Status = models.CampaignStatusSending
	} else {
		scheduleFor := primitive.NewDateTimeFromTime(*in.ScheduleFor)
		campaign.ScheduleFor = &scheduleFor
	}

	if _, err := c.CDB.InsertOne(r.Context(), campaign); err != nil {
		config.ErrorStatus("failed to insert campaign", http.StatusInternalServerError, w, err)
		return
	}

	resp := createCampaignResponse{Campaign: campaign}
	if in.SendNow {
		result, err := c.Engine.Dispatch(r.Context(), campaign.ID, false)
		if err != nil {
			// fatal (configuration/credential/persistence) error: the composer
			// surfaces this to the operator; per-recipient failures never land here
			config.ErrorStatus("failed to dispatch campaign", http.StatusInternalServerError, w, err)
			return
		}
		campaign.Status = result.Status
		resp.Campaign = campaign
		resp.Result = result
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CampaignHandler returns all campaigns, newest first
func (c Campaign) CampaignHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	dbResp, err := c.CDB.Find(ctx, bson.D{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get campaigns", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Campaign{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CampaignByIDHandler returns a campaign by ID
func (c Campaign) CampaignByIDHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaign_id"]

	cID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.CDB.FindOne(r.Context(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get campaign by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CampaignDeliveriesHandler returns the delivery rows for a campaign so the
// composer can show per-recipient outcomes
func (c Campaign) CampaignDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaign_id"]

	cID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DDB.Find(ctx, bson.M{"campaignId": cID})
	if err != nil {
		config.ErrorStatus("failed to get deliveries by campaign ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Delivery{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RetryCampaignHandler re-runs dispatch for the subset of subscriptions whose
// prior delivery failed. The campaign metrics after the run reflect only the
// retry attempt's resolved set.
func (c Campaign) RetryCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaign_id"]

	cID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	result, err := c.Engine.Dispatch(r.Context(), cID, true)
	if err != nil {
		config.ErrorStatus("failed to retry campaign", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("campaign retry finished",
		"campaignId", cID.Hex(),
		"status", result.Status,
		"total", result.Total,
	)

	b, err := json.Marshal(result)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
