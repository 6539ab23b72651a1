package services

import (
	"math"
	"time"

	"rental-scheduling-server/calendar"
	"rental-scheduling-server/models"
)

// extraGuestRate is the surcharge per extra guest per rental day, as a
// fraction of the nightly price.
const extraGuestRate = 0.1

// Stay is a candidate stay to be priced: either a half-open date range or a
// set of individual dates.
type Stay struct {
	StartDate  time.Time
	EndDate    time.Time
	Dates      []time.Time
	GuestCount int
}

// Quote is the monetary breakdown of a candidate stay.
type Quote struct {
	RentalDays          int     `json:"rentalDays"`
	PricePerDay         float64 `json:"pricePerDay"`
	ExtraGuests         int     `json:"extraGuests"`
	ExtraGuestSurcharge float64 `json:"extraGuestSurcharge"`
	TotalAmount         float64 `json:"totalAmount"`
	Currency            string  `json:"currency"`
}

// PricingService computes quotes. It is deterministic and touches no
// storage; callers re-quote whenever guests, dates or property terms change.
type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// Quote prices the stay against the property's terms. Guests beyond
// bedroomCount*2 each pay 10% of the nightly price per rental day.
func (s *PricingService) Quote(property *models.Property, stay Stay) Quote {
	rentalDays := stay.rentalDays()

	extraGuests := stay.GuestCount - property.AllowedGuests()
	if extraGuests < 0 {
		extraGuests = 0
	}

	surcharge := 0.0
	if extraGuests > 0 {
		surcharge = extraGuestRate * property.PricePerNight * float64(extraGuests) * float64(rentalDays)
	}

	return Quote{
		RentalDays:          rentalDays,
		PricePerDay:         property.PricePerNight,
		ExtraGuests:         extraGuests,
		ExtraGuestSurcharge: round2(surcharge),
		TotalAmount:         round2(property.PricePerNight*float64(rentalDays) + surcharge),
		Currency:            property.Currency,
	}
}

func (st Stay) rentalDays() int {
	if len(st.Dates) > 0 {
		return len(st.Dates)
	}
	days := calendar.DaysBetween(st.StartDate, st.EndDate)
	if days < 1 {
		days = 1
	}
	return days
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
