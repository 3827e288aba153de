package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Campaign status state machine:
// draft -> scheduled -> sending -> completed | partial_failure | cancelled.
// "send now" campaigns skip scheduled and go straight to sending.
const (
	CampaignStatusDraft          = "draft"
	CampaignStatusScheduled      = "scheduled"
	CampaignStatusSending        = "sending"
	CampaignStatusCompleted      = "completed"
	CampaignStatusPartialFailure = "partial_failure"
	CampaignStatusCancelled      = "cancelled"
)

// Audience segments a campaign can target
const (
	AudienceAll           = "all"
	AudienceActive        = "active"
	AudienceInactive      = "inactive"
	AudienceCategory      = "category"
	AudienceAbandonedCart = "abandoned_cart"
	AudienceAdmins        = "admins"
)

// Campaign holds the structure for the campaigns collection in mongo
type Campaign struct {
	ID           primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Title        string              `json:"title" bson:"title"`
	Body         string              `json:"body" bson:"body"`
	ImageURL     string              `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Deeplink     string              `json:"deeplink,omitempty" bson:"deeplink,omitempty"`
	Audience     string              `json:"audience" bson:"audience"`
	Channels     []string            `json:"channels" bson:"channels"` // empty means all channels
	CategorySlug string              `json:"categorySlug,omitempty" bson:"categorySlug,omitempty"`
	ScheduleFor  *primitive.DateTime `json:"scheduleFor,omitempty" bson:"scheduleFor,omitempty"`
	Status       string              `json:"status" bson:"status"`
	Metrics      CampaignMetrics     `json:"metrics" bson:"metrics"`
	CreatedBy    string              `json:"createdBy" bson:"createdBy"`
	CreatedAt    primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// CampaignMetrics is the snapshot of the most recent dispatch attempt. A retry
// overwrites it with that attempt's resolved-set counts; it is not cumulative.
type CampaignMetrics struct {
	Total     int `json:"total" bson:"total"`
	Delivered int `json:"delivered" bson:"delivered"`
	Clicked   int `json:"clicked" bson:"clicked"`
	Failed    int `json:"failed" bson:"failed"`
}

// ValidAudience reports whether s is one of the closed audience enum values
func ValidAudience(s string) bool {
	switch s {
	case AudienceAll, AudienceActive, AudienceInactive, AudienceCategory, AudienceAbandonedCart, AudienceAdmins:
		return true
	}
	return false
}
