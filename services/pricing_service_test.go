package services

import (
	"testing"
	"time"

	"rental-scheduling-server/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuoteWithExtraGuests(t *testing.T) {
	// 100 USD/night, 2 bedrooms (4 guests included), 3 nights, 6 guests:
	// 2 extras pay 0.1*100 each per night -> 60 surcharge, 360 total.
	property := &models.Property{PricePerNight: 100, Currency: "USD", BedroomCount: 2}
	quote := NewPricingService().Quote(property, Stay{
		StartDate:  date(2024, time.June, 1),
		EndDate:    date(2024, time.June, 4),
		GuestCount: 6,
	})

	if quote.RentalDays != 3 {
		t.Fatalf("expected 3 rental days, got %d", quote.RentalDays)
	}
	if quote.ExtraGuests != 2 {
		t.Fatalf("expected 2 extra guests, got %d", quote.ExtraGuests)
	}
	if quote.ExtraGuestSurcharge != 60 {
		t.Fatalf("expected surcharge 60, got %v", quote.ExtraGuestSurcharge)
	}
	if quote.TotalAmount != 360 {
		t.Fatalf("expected total 360, got %v", quote.TotalAmount)
	}
	if quote.Currency != "USD" {
		t.Fatalf("expected USD, got %q", quote.Currency)
	}
}

func TestQuoteWithoutExtraGuests(t *testing.T) {
	property := &models.Property{PricePerNight: 80, Currency: "EUR", BedroomCount: 2}
	quote := NewPricingService().Quote(property, Stay{
		StartDate:  date(2024, time.June, 1),
		EndDate:    date(2024, time.June, 3),
		GuestCount: 4,
	})

	if quote.ExtraGuestSurcharge != 0 {
		t.Fatalf("expected no surcharge, got %v", quote.ExtraGuestSurcharge)
	}
	if quote.TotalAmount != 160 {
		t.Fatalf("expected total 160, got %v", quote.TotalAmount)
	}
}

func TestQuoteIndividualDatesCountAsRentalDays(t *testing.T) {
	property := &models.Property{PricePerNight: 50, BedroomCount: 1}
	quote := NewPricingService().Quote(property, Stay{
		Dates: []time.Time{
			date(2024, time.June, 1),
			date(2024, time.June, 2),
			date(2024, time.June, 10),
		},
		GuestCount: 2,
	})

	if quote.RentalDays != 3 {
		t.Fatalf("expected 3 rental days, got %d", quote.RentalDays)
	}
	if quote.TotalAmount != 150 {
		t.Fatalf("expected total 150, got %v", quote.TotalAmount)
	}
}

func TestQuoteMinimumOneRentalDay(t *testing.T) {
	property := &models.Property{PricePerNight: 90, BedroomCount: 1}
	quote := NewPricingService().Quote(property, Stay{
		StartDate:  date(2024, time.June, 1),
		EndDate:    date(2024, time.June, 1),
		GuestCount: 1,
	})
	if quote.RentalDays != 1 {
		t.Fatalf("expected minimum of 1 rental day, got %d", quote.RentalDays)
	}
}

func TestQuoteRoundsToCents(t *testing.T) {
	property := &models.Property{PricePerNight: 33.33, BedroomCount: 0}
	quote := NewPricingService().Quote(property, Stay{
		StartDate:  date(2024, time.June, 1),
		EndDate:    date(2024, time.June, 4),
		GuestCount: 1,
	})
	// 33.33*3 + 0.1*33.33*1*3 = 99.99 + 9.999 -> 109.99 after rounding.
	if quote.TotalAmount != 109.99 {
		t.Fatalf("expected 109.99, got %v", quote.TotalAmount)
	}
}
