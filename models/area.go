package models

import "time"

// Area is an owner's listing. Its slots are created together with it.
type Area struct {
	ID           string    `bson:"id" json:"id"`
	OwnerID      string    `bson:"ownerId" json:"ownerId"`
	Name         string    `bson:"name" json:"name"`
	Location     string    `bson:"location,omitempty" json:"location,omitempty"`
	TotalSlots   int       `bson:"totalSlots" json:"totalSlots"`
	PricePerHour int64     `bson:"pricePerHour" json:"pricePerHour"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// AreaUpdate is the owner input for editing a listing. Nil fields are left as they are.
// The slot count is fixed at creation.
type AreaUpdate struct {
	Name         *string `json:"name"`
	Location     *string `json:"location"`
	PricePerHour *int64  `json:"pricePerHour"`
}

// AreaInput is the owner input for creating an area.
type AreaInput struct {
	Name         string `json:"name" binding:"required"`
	Location     string `json:"location"`
	TotalSlots   int    `json:"totalSlots" binding:"required"`
	PricePerHour int64  `json:"pricePerHour"`
}
