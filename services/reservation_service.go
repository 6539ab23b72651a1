package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rental-scheduling-server/calendar"
	"rental-scheduling-server/models"
	"rental-scheduling-server/storage"
)

// pendingWindow is how long a pending request holds its dates before the
// expiry sweep cancels it.
const pendingWindow = 24 * time.Hour

// BookingStore is the persistence the coordinator needs. CreateIfVacant must
// serialize the overlap check and the insert per property.
type BookingStore interface {
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	BookingsByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error)
	CreateIfVacant(ctx context.Context, booking *models.Booking) error
	SaveBooking(ctx context.Context, booking *models.Booking) error
	ExpirePending(ctx context.Context, now time.Time) ([]models.Booking, error)
}

// Publisher fans availability-changed signals out to open calendar views.
type Publisher interface {
	Publish(ctx context.Context, propertyID uint, kind string)
}

// ReserveRequest is a candidate booking.
type ReserveRequest struct {
	PropertyID  uint
	TenantID    uint
	StartDate   time.Time
	EndDate     time.Time
	GuestCount  int
	ContactInfo map[string]string
}

// ReservationService is the conflict-resolution authority: it validates a
// candidate stay, quotes it, and commits it atomically or rejects it. The
// commit is never retried automatically; a lost response must be re-validated
// by the caller, otherwise a retry that actually landed would double-book.
type ReservationService struct {
	props    PropertyStore
	bookings BookingStore
	pricing  *PricingService
	bus      Publisher
	now      func() time.Time
}

func NewReservationService(props PropertyStore, bookings BookingStore, pricing *PricingService, bus Publisher) *ReservationService {
	return &ReservationService{
		props:    props,
		bookings: bookings,
		pricing:  pricing,
		bus:      bus,
		now:      time.Now,
	}
}

// Reserve validates and atomically commits a candidate booking. On success
// the booking starts out pending/payment-pending with a 24h request window.
// On overlap it returns *storage.ConflictError with the conflicting dates and
// leaves no partial state behind.
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error) {
	start := calendar.DayOf(req.StartDate)
	end := calendar.DayOf(req.EndDate)

	if !start.Before(end) {
		return nil, fmt.Errorf("%w: startDate must be before endDate", ErrValidation)
	}
	if req.GuestCount < 1 {
		return nil, fmt.Errorf("%w: guestCount must be at least 1", ErrValidation)
	}
	if start.Before(calendar.DayOf(s.now())) {
		return nil, fmt.Errorf("%w: startDate must not be in the past", ErrValidation)
	}

	property, err := s.props.GetProperty(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("load property: %w", err)
	}

	quote := s.pricing.Quote(property, Stay{StartDate: start, EndDate: end, GuestCount: req.GuestCount})

	contact, err := json.Marshal(req.ContactInfo)
	if err != nil {
		return nil, fmt.Errorf("encode contact info: %w", err)
	}
	metadata, err := json.Marshal(models.BookingMetadata{
		RentalDays:  quote.RentalDays,
		PricePerDay: quote.PricePerDay,
	})
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	booking := &models.Booking{
		PropertyID:          req.PropertyID,
		TenantID:            req.TenantID,
		OwnerID:             property.OwnerID,
		StartDate:           start,
		EndDate:             end,
		GuestCount:          req.GuestCount,
		Currency:            quote.Currency,
		TotalAmount:         quote.TotalAmount,
		ExtraGuestSurcharge: quote.ExtraGuestSurcharge,
		Status:              models.StatusPending,
		PaymentStatus:       models.PaymentPending,
		ContactInfo:         contact,
		Metadata:            metadata,
		ExpiresAt:           s.now().Add(pendingWindow),
	}

	if err := s.bookings.CreateIfVacant(ctx, booking); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		var conflict *storage.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, fmt.Errorf("commit booking: %w", err)
	}

	s.bus.Publish(ctx, booking.PropertyID, KindReserved)
	return booking, nil
}

var validStatuses = map[string]bool{
	models.StatusPending:   true,
	models.StatusConfirmed: true,
	models.StatusCancelled: true,
	models.StatusCompleted: true,
}

var validPaymentStatuses = map[string]bool{
	models.PaymentPending:  true,
	models.PaymentPaid:     true,
	models.PaymentFailed:   true,
	models.PaymentRefunded: true,
}

// UpdateStatus moves a booking to the given status, optionally updating the
// payment status. Cancelled and completed are terminal. Cancelling through
// here frees the dates like Cancel does.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint, status, paymentStatus string) (*models.Booking, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if paymentStatus != "" && !validPaymentStatuses[paymentStatus] {
		return nil, fmt.Errorf("%w: unknown paymentStatus %q", ErrValidation, paymentStatus)
	}

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Terminal() {
		return nil, ErrTerminalStatus
	}

	booking.Status = status
	if paymentStatus != "" {
		booking.PaymentStatus = paymentStatus
	}
	if err := s.bookings.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}

	if status == models.StatusCancelled {
		s.bus.Publish(ctx, booking.PropertyID, KindCancelled)
	}
	return booking, nil
}

// Cancel transitions a pending or confirmed booking to cancelled, which
// immediately frees its dates for future availability reads.
func (s *ReservationService) Cancel(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusPending && booking.Status != models.StatusConfirmed {
		return nil, ErrTerminalStatus
	}

	booking.Status = models.StatusCancelled
	if err := s.bookings.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.bus.Publish(ctx, booking.PropertyID, KindCancelled)
	return booking, nil
}

// Get returns a booking by id.
func (s *ReservationService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	return s.getBooking(ctx, id)
}

// ListByProperty returns all bookings of a property, newest first.
func (s *ReservationService) ListByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error) {
	if _, err := s.props.GetProperty(ctx, propertyID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return s.bookings.BookingsByProperty(ctx, propertyID)
}

// ExpirePending cancels pending bookings whose 24h request window lapsed and
// broadcasts an invalidation for each affected property. Run from the cron
// schedule and from the maintenance endpoint.
func (s *ReservationService) ExpirePending(ctx context.Context) (int, error) {
	expired, err := s.bookings.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire pending: %w", err)
	}
	seen := make(map[uint]bool)
	for _, b := range expired {
		if !seen[b.PropertyID] {
			seen[b.PropertyID] = true
			s.bus.Publish(ctx, b.PropertyID, KindExpired)
		}
	}
	return len(expired), nil
}

func (s *ReservationService) getBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return booking, nil
}
