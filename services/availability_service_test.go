package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-scheduling-server/calendar"
	"rental-scheduling-server/models"
	"rental-scheduling-server/storage"
)

func newTestStore(t *testing.T) (*storage.MemoryStore, *models.Property) {
	t.Helper()
	store := storage.NewMemoryStore()
	property := &models.Property{
		OwnerID:       7,
		Title:         "Test Flat",
		PricePerNight: 100,
		Currency:      "USD",
		BedroomCount:  2,
		Capacity:      6,
	}
	if err := store.SaveProperty(context.Background(), property); err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return store, property
}

func recordFor(t *testing.T, records []models.DayRecord, day time.Time) models.DayRecord {
	t.Helper()
	for _, r := range records {
		if r.Date.Equal(day) {
			return r
		}
	}
	t.Fatalf("no record for %s", calendar.FormatDate(day))
	return models.DayRecord{}
}

func TestMonthAvailabilityEmptyMonth(t *testing.T) {
	store, property := newTestStore(t)
	svc := NewAvailabilityService(store, store)

	records, err := svc.MonthAvailability(context.Background(), property.ID, time.April, 2024)
	if err != nil {
		t.Fatalf("MonthAvailability: %v", err)
	}
	if len(records) != 30 {
		t.Fatalf("expected 30 records for April, got %d", len(records))
	}
	for _, r := range records {
		if !r.Available || r.Booked || r.Blocked || r.Price != 100 {
			t.Fatalf("empty month should be all available at 100: %+v", r)
		}
	}
}

func TestMonthAvailabilityReflectsBookings(t *testing.T) {
	store, property := newTestStore(t)
	svc := NewAvailabilityService(store, store)

	booking := &models.Booking{
		PropertyID: property.ID,
		TenantID:   2,
		StartDate:  date(2024, time.April, 10),
		EndDate:    date(2024, time.April, 13),
		GuestCount: 2,
		Status:     models.StatusConfirmed,
	}
	if err := store.CreateIfVacant(context.Background(), booking); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	records, err := svc.MonthAvailability(context.Background(), property.ID, time.April, 2024)
	if err != nil {
		t.Fatalf("MonthAvailability: %v", err)
	}

	for d := 10; d < 13; d++ {
		rec := recordFor(t, records, date(2024, time.April, d))
		if !rec.Booked || rec.Available {
			t.Fatalf("April %d should be booked and unavailable: %+v", d, rec)
		}
	}
	// Half-open: checkout day stays free.
	if rec := recordFor(t, records, date(2024, time.April, 13)); rec.Booked || !rec.Available {
		t.Fatalf("checkout day must remain available: %+v", rec)
	}
}

func TestCancelledBookingFreesDates(t *testing.T) {
	store, property := newTestStore(t)
	svc := NewAvailabilityService(store, store)
	ctx := context.Background()

	booking := &models.Booking{
		PropertyID: property.ID,
		TenantID:   2,
		StartDate:  date(2024, time.April, 1),
		EndDate:    date(2024, time.April, 5),
		GuestCount: 2,
		Status:     models.StatusPending,
	}
	if err := store.CreateIfVacant(ctx, booking); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	booking.Status = models.StatusCancelled
	if err := store.SaveBooking(ctx, booking); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	records, err := svc.MonthAvailability(ctx, property.ID, time.April, 2024)
	if err != nil {
		t.Fatalf("MonthAvailability: %v", err)
	}
	for d := 1; d < 5; d++ {
		rec := recordFor(t, records, date(2024, time.April, d))
		if !rec.Available || rec.Booked {
			t.Fatalf("April %d should be free after cancellation: %+v", d, rec)
		}
	}
}

func TestMonthAvailabilityBlocksAndOverrides(t *testing.T) {
	store, property := newTestStore(t)
	svc := NewAvailabilityService(store, store)
	ctx := context.Background()

	block := &models.PropertyBlock{
		PropertyID: property.ID,
		StartDate:  date(2024, time.April, 20),
		EndDate:    date(2024, time.April, 22),
		Reason:     "maintenance",
	}
	if err := store.CreateBlock(ctx, block); err != nil {
		t.Fatalf("seed block: %v", err)
	}
	if err := store.SaveDayPrice(ctx, &models.DayPrice{
		PropertyID: property.ID,
		Date:       date(2024, time.April, 25),
		Price:      150,
	}); err != nil {
		t.Fatalf("seed day price: %v", err)
	}

	records, err := svc.MonthAvailability(ctx, property.ID, time.April, 2024)
	if err != nil {
		t.Fatalf("MonthAvailability: %v", err)
	}

	for d := 20; d < 22; d++ {
		rec := recordFor(t, records, date(2024, time.April, d))
		if !rec.Blocked || rec.Available {
			t.Fatalf("April %d should be blocked: %+v", d, rec)
		}
	}
	if rec := recordFor(t, records, date(2024, time.April, 25)); rec.Price != 150 {
		t.Fatalf("expected overridden price 150, got %v", rec.Price)
	}
}

func TestMonthAvailabilityUnknownProperty(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewAvailabilityService(store, store)

	_, err := svc.MonthAvailability(context.Background(), 999, time.April, 2024)
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestMonthAvailabilityInvalidMonth(t *testing.T) {
	store, property := newTestStore(t)
	svc := NewAvailabilityService(store, store)

	_, err := svc.MonthAvailability(context.Background(), property.ID, time.Month(0), 2024)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCheckRangeAdvisory(t *testing.T) {
	store, property := newTestStore(t)
	svc := NewAvailabilityService(store, store)
	ctx := context.Background()

	booking := &models.Booking{
		PropertyID: property.ID,
		TenantID:   2,
		StartDate:  date(2024, time.May, 3),
		EndDate:    date(2024, time.May, 5),
		GuestCount: 1,
		Status:     models.StatusPending,
	}
	if err := store.CreateIfVacant(ctx, booking); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	check, err := svc.CheckRange(ctx, property.ID, date(2024, time.May, 1), date(2024, time.May, 7))
	if err != nil {
		t.Fatalf("CheckRange: %v", err)
	}
	if check.Available {
		t.Fatal("range overlapping a booking must not be available")
	}
	if len(check.BlockedDates) != 2 {
		t.Fatalf("expected 2 blocked dates, got %v", check.BlockedDates)
	}
	if check.BlockedDates[0] != "2024-05-03" || check.BlockedDates[1] != "2024-05-04" {
		t.Fatalf("unexpected blocked dates: %v", check.BlockedDates)
	}

	clear, err := svc.CheckRange(ctx, property.ID, date(2024, time.May, 10), date(2024, time.May, 12))
	if err != nil {
		t.Fatalf("CheckRange: %v", err)
	}
	if !clear.Available || len(clear.BlockedDates) != 0 {
		t.Fatalf("expected clear range, got %+v", clear)
	}
}
