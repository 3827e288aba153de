package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PushTemplate is a named, reusable prototype of a campaign's editable fields,
// used to prefill the composer. Name uniqueness is left to the caller.
type PushTemplate struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Title        string             `json:"title" bson:"title"`
	Body         string             `json:"body" bson:"body"`
	ImageURL     string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Deeplink     string             `json:"deeplink,omitempty" bson:"deeplink,omitempty"`
	Audience     string             `json:"audience" bson:"audience"`
	CategorySlug string             `json:"categorySlug,omitempty" bson:"categorySlug,omitempty"`
	CreatedBy    string             `json:"createdBy" bson:"createdBy"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
