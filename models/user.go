package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User holds the storefront customer fields the audience resolver reads.
// The full customer document lives with the storefront; this service only
// projects what segment predicates need.
type User struct {
	ID                string              `json:"_id" bson:"_id"`
	Email             string              `json:"email" bson:"email"`
	IsAdmin           bool                `json:"isAdmin" bson:"isAdmin"`
	LastOrderAt       *primitive.DateTime `json:"lastOrderAt,omitempty" bson:"lastOrderAt,omitempty"`
	CategoryInterests []string            `json:"categoryInterests,omitempty" bson:"categoryInterests,omitempty"`
	HasAbandonedCart  bool                `json:"hasAbandonedCart" bson:"hasAbandonedCart"`
	CreatedAt         primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}
