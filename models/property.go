package models

import (
	"gorm.io/gorm"
)

// Property carries the terms this core needs to quote and book a stay. The
// full listing (description, photos, amenities, moderation state) lives in
// the property service; this table is read-only here.
type Property struct {
	gorm.Model
	OwnerID       uint    `json:"ownerID" gorm:"index"`
	Title         string  `json:"title"`
	PricePerNight float64 `json:"pricePerNight" gorm:"not null"`
	Currency      string  `json:"currency" gorm:"type:varchar(8);default:'USD'"`
	BedroomCount  int     `json:"bedroomCount"`
	Capacity      int     `json:"capacity"`
}

// AllowedGuests is the guest count included in the nightly price; guests
// beyond it pay the extra-guest surcharge.
func (p *Property) AllowedGuests() int {
	return p.BedroomCount * 2
}
