package push

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/config"
	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
)

// defaultDeeplink is the in-app destination used when a campaign has none
const defaultDeeplink = "/"

// SummaryNotifier receives the outcome of a finished dispatch run. Best
// effort; implementations must not return errors into the run.
type SummaryNotifier interface {
	DispatchSummary(campaign *models.Campaign, result *DispatchResult)
}

// DispatchResult is the outcome of one dispatch attempt. The counts cover only
// this attempt's resolved set, not all attempts ever made for the campaign.
type DispatchResult struct {
	CampaignID primitive.ObjectID `json:"campaignId"`
	Status     string             `json:"status"`
	Total      int                `json:"total"`
	Delivered  int                `json:"delivered"`
	Failed     int                `json:"failed"`
}

// Engine executes one send attempt across a resolved audience and reconciles
// the campaign's terminal status. Recipients are processed sequentially; one
// recipient's failure never aborts the loop for the rest. Re-running a
// dispatch is idempotent per recipient because delivery rows are upserts.
type Engine struct {
	Config     *config.Config
	Campaigns  databases.CampaignDatabase
	Deliveries databases.DeliveryDatabase
	Resolver   *Resolver
	Tokens     TokenProvider
	Gateway    Sender
	Notifier   SummaryNotifier // optional
}

// Dispatch runs one attempt for the campaign. With retryFailedOnly the
// audience narrows to subscriptions whose prior delivery failed.
//
// Ordering: the bearer token is obtained before the campaign is flipped to
// sending, so a credential failure leaves the campaign status untouched and
// writes no delivery rows.
func (e *Engine) Dispatch(ctx context.Context, campaignID primitive.ObjectID, retryFailedOnly bool) (*DispatchResult, error) {
	if err := e.Config.ValidatePush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	campaign, err := e.Campaigns.FindOne(ctx, bson.M{"_id": campaignID})
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign %s: %w", campaignID.Hex(), err)
	}

	token, err := e.Tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if err := e.setStatus(ctx, campaignID, models.CampaignStatusSending, nil); err != nil {
		return nil, fmt.Errorf("failed to mark campaign sending: %w", err)
	}
	campaign.Status = models.CampaignStatusSending

	subs, err := e.Resolver.Resolve(ctx, campaign, retryFailedOnly)
	if err != nil {
		// campaign stays in sending; the operator re-runs dispatch to converge
		return nil, fmt.Errorf("failed to resolve audience: %w", err)
	}

	zap.S().Infow("dispatching campaign",
		"campaignId", campaignID.Hex(),
		"audienceSize", len(subs),
		"retryFailedOnly", retryFailedOnly,
	)

	delivered, failed := 0, 0
	for _, sub := range subs {
		if err := e.Deliveries.MarkQueued(ctx, campaignID, sub.ID); err != nil {
			// losing one delivery record is less severe than losing the send
			zap.S().Errorw("failed to upsert queued delivery",
				"campaignId", campaignID.Hex(),
				"subscriptionId", sub.ID.Hex(),
				"error", err,
			)
		}

		// cached between recipients, refreshed if a long run outlives it
		var tokenErr error
		token, tokenErr = e.Tokens.Token(ctx)
		if tokenErr != nil {
			// an expired credential would fail every remaining recipient the
			// same way; abort the attempt and leave the campaign in sending
			return nil, tokenErr
		}

		sendErr := e.Gateway.Send(ctx, token, BuildMessage(campaign, sub))
		if sendErr != nil {
			failed++
			if err := e.Deliveries.MarkFailed(ctx, campaignID, sub.ID, sendErr.Error()); err != nil {
				zap.S().Errorw("failed to record failed delivery",
					"campaignId", campaignID.Hex(),
					"subscriptionId", sub.ID.Hex(),
					"error", err,
				)
			}
		} else {
			delivered++
			if err := e.Deliveries.MarkSent(ctx, campaignID, sub.ID, time.Now()); err != nil {
				zap.S().Errorw("failed to record sent delivery",
					"campaignId", campaignID.Hex(),
					"subscriptionId", sub.ID.Hex(),
					"error", err,
				)
			}
		}
	}

	status := terminalStatus(delivered, failed)
	metrics := &models.CampaignMetrics{
		Total:     len(subs),
		Delivered: delivered,
		Clicked:   0,
		Failed:    failed,
	}
	if err := e.setStatus(ctx, campaignID, status, metrics); err != nil {
		return nil, fmt.Errorf("failed to finalize campaign status: %w", err)
	}

	result := &DispatchResult{
		CampaignID: campaignID,
		Status:     status,
		Total:      len(subs),
		Delivered:  delivered,
		Failed:     failed,
	}

	zap.S().Infow("campaign dispatch finished",
		"campaignId", campaignID.Hex(),
		"status", status,
		"total", result.Total,
		"delivered", delivered,
		"failed", failed,
	)

	if e.Notifier != nil && status != models.CampaignStatusCompleted {
		e.Notifier.DispatchSummary(campaign, result)
	}
	return result, nil
}

// BuildMessage maps a campaign and one subscription to the gateway payload
func BuildMessage(campaign *models.Campaign, sub models.PushSubscription) Message {
	deeplink := campaign.Deeplink
	if deeplink == "" {
		deeplink = defaultDeeplink
	}
	return Message{
		Token: sub.Token,
		Notification: &Notification{
			Title: campaign.Title,
			Body:  campaign.Body,
			Image: campaign.ImageURL,
		},
		Data: map[string]string{
			"deeplink":   deeplink,
			"campaignId": campaign.ID.Hex(),
		},
		Android: &AndroidConfig{Priority: "high"},
		Webpush: &WebpushConfig{FCMOptions: &WebpushFCMOptions{Link: deeplink}},
	}
}

// terminalStatus implements the status determination table
func terminalStatus(delivered, failed int) string {
	switch {
	case failed == 0:
		return models.CampaignStatusCompleted
	case delivered > 0:
		return models.CampaignStatusPartialFailure
	default:
		return models.CampaignStatusCancelled
	}
}

func (e *Engine) setStatus(ctx context.Context, campaignID primitive.ObjectID, status string, metrics *models.CampaignMetrics) error {
	set := bson.M{
		"status":    status,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if metrics != nil {
		set["metrics"] = metrics
	}
	_, err := e.Campaigns.UpdateOne(ctx, bson.M{"_id": campaignID}, bson.M{"$set": set})
	return err
}
