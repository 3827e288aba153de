package push

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/config"
	"github.com/minnowkids/minnow-push-api/models"
	templates "github.com/minnowkids/minnow-push-api/templates/html"
)

// OpsNotifier emails a dispatch summary to the ops address when a run ends in
// partial_failure or cancelled. Strictly best effort: failures are logged and
// never affect the dispatch outcome.
type OpsNotifier struct {
	APIKey string
	From   string
	To     string
}

// NewOpsNotifier returns nil when the ops email or sendgrid key is not
// configured, which disables summary emails entirely.
func NewOpsNotifier(conf *config.Config) *OpsNotifier {
	if conf.OpsAlertEmail == "" || conf.SendgridAPIKey == "" {
		return nil
	}
	from := conf.SendgridFrom
	if from == "" {
		from = "push-alerts@minnowkids.com"
	}
	return &OpsNotifier{
		APIKey: conf.SendgridAPIKey,
		From:   from,
		To:     conf.OpsAlertEmail,
	}
}

// DispatchSummary implements SummaryNotifier
func (n *OpsNotifier) DispatchSummary(campaign *models.Campaign, result *DispatchResult) {
	subject := fmt.Sprintf("Campaign %q finished with status %s", campaign.Title, result.Status)
	body := fmt.Sprintf(
		"Campaign: %s\nCampaign ID: %s\nStatus: %s\nAudience size: %d\nDelivered: %d\nFailed: %d\n\nReview the delivery list in the composer for per-recipient errors.",
		campaign.Title,
		result.CampaignID.Hex(),
		result.Status,
		result.Total,
		result.Delivered,
		result.Failed,
	)

	from := mail.NewEmail("Minnow Push", n.From)
	to := mail.NewEmail("Push Ops", n.To)
	message := mail.NewSingleEmail(from, subject, to, body, templates.RenderDispatchSummaryEmail(subject, body))

	client := sendgrid.NewSendClient(n.APIKey)
	resp, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send dispatch summary email", "campaignId", result.CampaignID.Hex(), "error", err)
		return
	}
	if resp.StatusCode >= 400 {
		zap.S().Errorw("dispatch summary email rejected", "campaignId", result.CampaignID.Hex(), "status", resp.StatusCode)
	}
}
