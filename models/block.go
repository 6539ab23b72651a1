package models

import (
	"time"

	"gorm.io/gorm"
)

// PropertyBlock withholds the half-open interval [StartDate, EndDate) from
// booking, by owner or admin action. Blocked dates report blocked=true and
// available=false regardless of bookings.
type PropertyBlock struct {
	gorm.Model
	PropertyID uint      `json:"propertyID" gorm:"not null;index"`
	StartDate  time.Time `json:"startDate" gorm:"not null"`
	EndDate    time.Time `json:"endDate" gorm:"not null"`
	Reason     string    `json:"reason"`
}

// DayPrice overrides the property's nightly price on a single date.
type DayPrice struct {
	gorm.Model
	PropertyID uint      `json:"propertyID" gorm:"not null;index"`
	Date       time.Time `json:"date" gorm:"not null;index"`
	Price      float64   `json:"price" gorm:"not null"`
}
