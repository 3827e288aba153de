package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Platforms a subscription can belong to
const (
	PlatformWeb     = "web"
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// PushSubscription holds the structure for the pushsubscriptions collection in mongo.
// The triple (userId, platform, deviceLabel) is the natural key: re-registering the
// same device updates the existing row instead of inserting a duplicate.
type PushSubscription struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	Email       string             `json:"email,omitempty" bson:"email,omitempty"`
	Platform    string             `json:"platform" bson:"platform"` // "web", "android" or "ios"
	Token       string             `json:"token" bson:"token"`       // opaque provider token, may rotate
	DeviceLabel string             `json:"deviceLabel" bson:"deviceLabel"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	Metadata    map[string]string  `json:"metadata,omitempty" bson:"metadata,omitempty"` // user agent, locale, etc.
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt   primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
