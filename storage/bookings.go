package storage

import (
	"context"
	"errors"
	"time"

	"rental-scheduling-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var occupyingStatuses = []string{models.StatusPending, models.StatusConfirmed, models.StatusCompleted}

// GormStore is the Postgres-backed store for properties, bookings, blocks
// and per-day price overrides.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := s.db.WithContext(ctx).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (s *GormStore) SaveProperty(ctx context.Context, property *models.Property) error {
	return s.db.WithContext(ctx).Save(property).Error
}

func (s *GormStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) BookingsByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// OverlappingBookings returns the occupying bookings whose half-open
// interval intersects [start, end).
func (s *GormStore) OverlappingBookings(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND status IN ? AND start_date < ? AND end_date > ?",
			propertyID, occupyingStatuses, end, start).
		Find(&bookings).Error
	return bookings, err
}

// CreateIfVacant runs the authoritative check-and-insert as one serialized
// operation: the transaction takes a FOR UPDATE lock on the property row, so
// two concurrent attempts for the same property re-check availability one
// after the other and at most one of an overlapping pair can commit.
func (s *GormStore) CreateIfVacant(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&property, booking.PropertyID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var overlapping []models.Booking
		if err := tx.
			Where("property_id = ? AND status IN ? AND start_date < ? AND end_date > ?",
				booking.PropertyID, occupyingStatuses, booking.EndDate, booking.StartDate).
			Find(&overlapping).Error; err != nil {
			return err
		}

		var blocks []models.PropertyBlock
		if err := tx.
			Where("property_id = ? AND start_date < ? AND end_date > ?",
				booking.PropertyID, booking.EndDate, booking.StartDate).
			Find(&blocks).Error; err != nil {
			return err
		}

		if dates := conflictDates(booking.StartDate, booking.EndDate, overlapping, blocks); len(dates) > 0 {
			return &ConflictError{Dates: dates}
		}
		return tx.Create(booking).Error
	})
}

func (s *GormStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Save(booking).Error
}

// ExpirePending cancels pending bookings whose request window lapsed and
// returns them so the caller can fan out invalidation per property.
func (s *GormStore) ExpirePending(ctx context.Context, now time.Time) ([]models.Booking, error) {
	var stale []models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND expires_at < ?", models.StatusPending, now).
			Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		ids := make([]uint, len(stale))
		for i := range stale {
			ids[i] = stale[i].ID
			stale[i].Status = models.StatusCancelled
		}
		return tx.Model(&models.Booking{}).
			Where("id IN ?", ids).
			Update("status", models.StatusCancelled).Error
	})
	return stale, err
}

func (s *GormStore) CreateBlock(ctx context.Context, block *models.PropertyBlock) error {
	return s.db.WithContext(ctx).Create(block).Error
}

func (s *GormStore) BlocksByProperty(ctx context.Context, propertyID uint) ([]models.PropertyBlock, error) {
	var blocks []models.PropertyBlock
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("start_date ASC").
		Find(&blocks).Error
	return blocks, err
}

func (s *GormStore) BlocksOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.PropertyBlock, error) {
	var blocks []models.PropertyBlock
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND start_date < ? AND end_date > ?", propertyID, end, start).
		Find(&blocks).Error
	return blocks, err
}

func (s *GormStore) DayPricesIn(ctx context.Context, propertyID uint, start, end time.Time) ([]models.DayPrice, error) {
	var prices []models.DayPrice
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND date >= ? AND date < ?", propertyID, start, end).
		Find(&prices).Error
	return prices, err
}
