package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Booking statuses. Cancelled and completed are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Payment statuses, driven by payment callbacks (external collaborator).
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Booking is a stay over the half-open date interval [StartDate, EndDate).
// Only bookings in pending, confirmed or completed status occupy the
// calendar; a cancelled booking frees its dates. Bookings are never deleted,
// only transitioned to cancelled.
type Booking struct {
	gorm.Model
	PropertyID          uint           `json:"propertyID" gorm:"not null;index"`
	TenantID            uint           `json:"tenantID" gorm:"not null;index"`
	OwnerID             uint           `json:"ownerID" gorm:"not null"`
	StartDate           time.Time      `json:"startDate" gorm:"not null;index"`
	EndDate             time.Time      `json:"endDate" gorm:"not null;index"`
	GuestCount          int            `json:"guestCount" gorm:"not null"`
	Currency            string         `json:"currency" gorm:"type:varchar(8)"`
	TotalAmount         float64        `json:"totalAmount"`
	ExtraGuestSurcharge float64        `json:"extraGuestSurcharge"`
	Status              string         `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus       string         `json:"paymentStatus" gorm:"type:varchar(20);default:'pending'"`
	ContactInfo         datatypes.JSON `json:"contactInfo" gorm:"type:jsonb"`
	Metadata            datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	ExpiresAt           time.Time      `json:"expiresAt"` // 24h window for pending requests
}

// BookingMetadata is the shape stored in Booking.Metadata.
type BookingMetadata struct {
	RentalDays  int     `json:"rentalDays"`
	PricePerDay float64 `json:"pricePerDay"`
}

// Occupies reports whether the booking counts against the calendar.
func (b *Booking) Occupies() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed || b.Status == StatusCompleted
}

// Terminal reports whether no further status transitions are allowed.
func (b *Booking) Terminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

// MarshalJSON renders the stay dates as "2006-01-02"; the booking footprint
// is a calendar-date interval, not a pair of timestamps.
func (b *Booking) MarshalJSON() ([]byte, error) {
	type Alias Booking
	return json.Marshal(&struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		*Alias
	}{
		StartDate: b.StartDate.Format("2006-01-02"),
		EndDate:   b.EndDate.Format("2006-01-02"),
		Alias:     (*Alias)(b),
	})
}
