package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-scheduling-server/calendar"
	"rental-scheduling-server/models"
	"rental-scheduling-server/storage"
)

// PropertyStore resolves property terms (the Property service collaborator).
type PropertyStore interface {
	GetProperty(ctx context.Context, id uint) (*models.Property, error)
}

// AvailabilityReader is the read-only slice of the store the availability
// derivation needs.
type AvailabilityReader interface {
	OverlappingBookings(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error)
	BlocksOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.PropertyBlock, error)
	DayPricesIn(ctx context.Context, propertyID uint, start, end time.Time) ([]models.DayPrice, error)
}

// RangeCheck is the advisory answer to "can I book [start, end)?". It can be
// stale the moment it is produced; the authoritative check happens again
// inside the reservation commit.
type RangeCheck struct {
	Available    bool     `json:"available"`
	BlockedDates []string `json:"blockedDates"`
}

// AvailabilityService materializes day records on demand. It never writes,
// so any number of readers may call it concurrently.
type AvailabilityService struct {
	props PropertyStore
	store AvailabilityReader
}

func NewAvailabilityService(props PropertyStore, store AvailabilityReader) *AvailabilityService {
	return &AvailabilityService{props: props, store: store}
}

// MonthAvailability returns one DayRecord for every calendar day of the
// month, no gaps: occupying bookings mark days booked, manual blocks mark
// days blocked, everything else is available at the override-or-default
// price. A month with no bookings is a valid all-available grid.
func (s *AvailabilityService) MonthAvailability(ctx context.Context, propertyID uint, month time.Month, year int) ([]models.DayRecord, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be 1-12, got %d", ErrValidation, month)
	}
	start, end := calendar.MonthSpan(month, year)
	return s.rangeAvailability(ctx, propertyID, start, end)
}

func (s *AvailabilityService) rangeAvailability(ctx context.Context, propertyID uint, start, end time.Time) ([]models.DayRecord, error) {
	property, err := s.props.GetProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("load property: %w", err)
	}

	bookings, err := s.store.OverlappingBookings(ctx, propertyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	blocks, err := s.store.BlocksOverlapping(ctx, propertyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	overrides, err := s.store.DayPricesIn(ctx, propertyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load day prices: %w", err)
	}

	booked := make(map[time.Time]bool)
	for _, b := range bookings {
		if b.Occupies() {
			calendar.EachDay(b.StartDate, b.EndDate, func(day time.Time) { booked[day] = true })
		}
	}
	blocked := make(map[time.Time]bool)
	for _, blk := range blocks {
		calendar.EachDay(blk.StartDate, blk.EndDate, func(day time.Time) { blocked[day] = true })
	}
	prices := make(map[time.Time]float64)
	for _, p := range overrides {
		prices[calendar.DayOf(p.Date)] = p.Price
	}

	var records []models.DayRecord
	calendar.EachDay(start, end, func(day time.Time) {
		rec := models.DayRecord{
			Date:    day,
			Price:   property.PricePerNight,
			Booked:  booked[day],
			Blocked: blocked[day],
		}
		if p, ok := prices[day]; ok {
			rec.Price = p
		}
		rec.Available = !rec.Booked && !rec.Blocked
		records = append(records, rec)
	})
	return records, nil
}

// CheckRange is the advisory pre-check exposed as POST check-availability.
func (s *AvailabilityService) CheckRange(ctx context.Context, propertyID uint, start, end time.Time) (*RangeCheck, error) {
	start, end = calendar.DayOf(start), calendar.DayOf(end)
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: startDate must be before endDate", ErrValidation)
	}

	records, err := s.rangeAvailability(ctx, propertyID, start, end)
	if err != nil {
		return nil, err
	}

	check := &RangeCheck{Available: true, BlockedDates: []string{}}
	for _, rec := range records {
		if !rec.Available {
			check.Available = false
			check.BlockedDates = append(check.BlockedDates, calendar.FormatDate(rec.Date))
		}
	}
	return check, nil
}
