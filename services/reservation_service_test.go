package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rental-scheduling-server/models"
	"rental-scheduling-server/storage"
)

func newReservationFixture(t *testing.T) (*ReservationService, *storage.MemoryStore, *models.Property) {
	t.Helper()
	store, property := newTestStore(t)
	bus := NewMemoryBus()
	svc := NewReservationService(store, store, NewPricingService(), NewSyncService(bus, time.Hour))
	// Fixed clock keeps the past-date rule deterministic.
	svc.now = func() time.Time { return date(2024, time.March, 1) }
	return svc, store, property
}

func TestReserveHappyPath(t *testing.T) {
	svc, _, property := newReservationFixture(t)

	booking, err := svc.Reserve(context.Background(), ReserveRequest{
		PropertyID:  property.ID,
		TenantID:    42,
		StartDate:   date(2024, time.March, 10),
		EndDate:     date(2024, time.March, 13),
		GuestCount:  6,
		ContactInfo: map[string]string{"phone": "+222 1234"},
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	if booking.Status != models.StatusPending || booking.PaymentStatus != models.PaymentPending {
		t.Fatalf("new booking must start pending/pending, got %s/%s", booking.Status, booking.PaymentStatus)
	}
	if booking.OwnerID != property.OwnerID {
		t.Fatalf("owner must come from the property, got %d", booking.OwnerID)
	}
	// 3 nights at 100 with 2 extra guests: 300 + 60.
	if booking.TotalAmount != 360 || booking.ExtraGuestSurcharge != 60 {
		t.Fatalf("unexpected pricing: total=%v surcharge=%v", booking.TotalAmount, booking.ExtraGuestSurcharge)
	}
	if !booking.ExpiresAt.Equal(date(2024, time.March, 1).Add(24 * time.Hour)) {
		t.Fatalf("expected 24h request window, got %v", booking.ExpiresAt)
	}
}

func TestReserveValidation(t *testing.T) {
	svc, _, property := newReservationFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  ReserveRequest
	}{
		{"reversed range", ReserveRequest{PropertyID: property.ID, TenantID: 1, StartDate: date(2024, time.March, 13), EndDate: date(2024, time.March, 10), GuestCount: 1}},
		{"empty range", ReserveRequest{PropertyID: property.ID, TenantID: 1, StartDate: date(2024, time.March, 10), EndDate: date(2024, time.March, 10), GuestCount: 1}},
		{"zero guests", ReserveRequest{PropertyID: property.ID, TenantID: 1, StartDate: date(2024, time.March, 10), EndDate: date(2024, time.March, 12), GuestCount: 0}},
		{"past start", ReserveRequest{PropertyID: property.ID, TenantID: 1, StartDate: date(2024, time.February, 20), EndDate: date(2024, time.February, 22), GuestCount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Reserve(ctx, tc.req); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if _, err := svc.Reserve(ctx, ReserveRequest{PropertyID: 999, TenantID: 1, StartDate: date(2024, time.March, 10), EndDate: date(2024, time.March, 12), GuestCount: 1}); !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestReserveConflictListsDates(t *testing.T) {
	svc, _, property := newReservationFixture(t)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 1,
		StartDate: date(2024, time.March, 10), EndDate: date(2024, time.March, 14), GuestCount: 1,
	}); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	_, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 2,
		StartDate: date(2024, time.March, 12), EndDate: date(2024, time.March, 16), GuestCount: 1,
	})
	var conflict *storage.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflict.Dates) != 2 {
		t.Fatalf("expected 2 conflicting dates (12th, 13th), got %v", conflict.Dates)
	}
	if !conflict.Dates[0].Equal(date(2024, time.March, 12)) || !conflict.Dates[1].Equal(date(2024, time.March, 13)) {
		t.Fatalf("unexpected conflicting dates: %v", conflict.Dates)
	}
}

func TestConcurrentOverlappingReserves(t *testing.T) {
	svc, _, property := newReservationFixture(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(tenant uint) {
			defer wg.Done()
			_, err := svc.Reserve(ctx, ReserveRequest{
				PropertyID: property.ID,
				TenantID:   tenant,
				StartDate:  date(2024, time.March, 10),
				EndDate:    date(2024, time.March, 15),
				GuestCount: 2,
			})
			results <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	committed, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			committed++
		default:
			var conflict *storage.ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("unexpected error: %v", err)
			}
			conflicts++
		}
	}
	if committed != 1 {
		t.Fatalf("exactly one overlapping reserve may commit, got %d", committed)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestCancelFreesDatesForRebooking(t *testing.T) {
	svc, _, property := newReservationFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 1,
		StartDate: date(2024, time.April, 1), EndDate: date(2024, time.April, 5), GuestCount: 1,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, booking.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	// The same interval can be booked again.
	if _, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 2,
		StartDate: date(2024, time.April, 1), EndDate: date(2024, time.April, 5), GuestCount: 1,
	}); err != nil {
		t.Fatalf("rebooking after cancel should succeed: %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	svc, _, property := newReservationFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 1,
		StartDate: date(2024, time.May, 1), EndDate: date(2024, time.May, 3), GuestCount: 1,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	confirmed, err := svc.UpdateStatus(ctx, booking.ID, models.StatusConfirmed, models.PaymentPaid)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != models.StatusConfirmed || confirmed.PaymentStatus != models.PaymentPaid {
		t.Fatalf("unexpected state: %s/%s", confirmed.Status, confirmed.PaymentStatus)
	}

	if _, err := svc.UpdateStatus(ctx, booking.ID, "archived", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status must be rejected, got %v", err)
	}

	completed, err := svc.UpdateStatus(ctx, booking.ID, models.StatusCompleted, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}

	// Completed is terminal for both paths.
	if _, err := svc.UpdateStatus(ctx, booking.ID, models.StatusPending, ""); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
	if _, err := svc.Cancel(ctx, booking.ID); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus on cancel, got %v", err)
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	svc, _, property := newReservationFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 1,
		StartDate: date(2024, time.May, 10), EndDate: date(2024, time.May, 12), GuestCount: 1,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, booking.ID, models.StatusConfirmed, ""); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
}

func TestExpirePendingCancelsStaleRequests(t *testing.T) {
	svc, store, property := newReservationFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 1,
		StartDate: date(2024, time.June, 1), EndDate: date(2024, time.June, 3), GuestCount: 1,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Move the clock past the 24h request window.
	svc.now = func() time.Time { return date(2024, time.March, 3) }

	n, err := svc.ExpirePending(ctx)
	if err != nil {
		t.Fatalf("ExpirePending: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired booking, got %d", n)
	}

	got, err := store.GetBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Fatalf("expired booking should be cancelled, got %s", got.Status)
	}
}

func TestReservePublishesInvalidation(t *testing.T) {
	store, property := newTestStore(t)
	bus := NewMemoryBus()
	svc := NewReservationService(store, store, NewPricingService(), NewSyncService(bus, time.Hour))
	svc.now = func() time.Time { return date(2024, time.March, 1) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := bus.Subscribe(ctx, property.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := svc.Reserve(ctx, ReserveRequest{
		PropertyID: property.ID, TenantID: 1,
		StartDate: date(2024, time.March, 20), EndDate: date(2024, time.March, 22), GuestCount: 1,
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != KindReserved || ev.PropertyID != property.ID {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an invalidation event after reserve")
	}
}
