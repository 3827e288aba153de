package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Admin holds the structure for the admins collection in mongo (back-office
// composer identities)
type Admin struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Roles     []string           `json:"roles" bson:"roles"`
	Active    bool               `json:"active" bson:"active"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
