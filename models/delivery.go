package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Delivery statuses. delivered/clicked marks are reserved for a later
// click-tracking integration; the dispatch engine only writes queued/sent/failed.
const (
	DeliveryStatusQueued = "queued"
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Delivery holds the structure for the deliveries collection in mongo. Unique on
// (campaignId, subscriptionId); a retry upserts the same row so the latest attempt
// is always the one visible.
type Delivery struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	CampaignID     primitive.ObjectID  `json:"campaignId" bson:"campaignId"`
	SubscriptionID primitive.ObjectID  `json:"subscriptionId" bson:"subscriptionId"`
	Status         string              `json:"status" bson:"status"`
	ErrorMessage   string              `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	SentAt         *primitive.DateTime `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	DeliveredAt    *primitive.DateTime `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	ClickedAt      *primitive.DateTime `json:"clickedAt,omitempty" bson:"clickedAt,omitempty"`
	CreatedAt      primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}
