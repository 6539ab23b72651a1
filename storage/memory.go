package storage

import (
	"context"
	"sync"
	"time"

	"rental-scheduling-server/calendar"
	"rental-scheduling-server/models"
)

// MemoryStore keeps everything in maps. It backs development mode when no
// database is configured, and the test suites. Reads take the shared RWMutex
// only long enough to copy; CreateIfVacant additionally serializes per
// property, mirroring the row lock the Postgres store takes.
type MemoryStore struct {
	mu       sync.RWMutex
	props    map[uint]models.Property
	bookings map[uint]models.Booking
	blocks   map[uint][]models.PropertyBlock
	prices   map[uint][]models.DayPrice
	nextID   uint

	lockMu    sync.Mutex
	propLocks map[uint]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		props:     make(map[uint]models.Property),
		bookings:  make(map[uint]models.Booking),
		blocks:    make(map[uint][]models.PropertyBlock),
		prices:    make(map[uint][]models.DayPrice),
		propLocks: make(map[uint]*sync.Mutex),
	}
}

func (s *MemoryStore) propertyLock(id uint) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.propLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.propLocks[id] = l
	}
	return l
}

func (s *MemoryStore) allocID() uint {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.props[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) SaveProperty(ctx context.Context, property *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if property.ID == 0 {
		property.ID = s.allocID()
		property.CreatedAt = time.Now()
	}
	property.UpdatedAt = time.Now()
	s.props[property.ID] = *property
	return nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) BookingsByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.PropertyID == propertyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) OverlappingBookings(ctx context.Context, propertyID uint, start, end time.Time) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlappingLocked(propertyID, start, end), nil
}

func (s *MemoryStore) overlappingLocked(propertyID uint, start, end time.Time) []models.Booking {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.PropertyID == propertyID && b.Occupies() &&
			calendar.Overlaps(b.StartDate, b.EndDate, start, end) {
			out = append(out, b)
		}
	}
	return out
}

// CreateIfVacant holds the property's lock across the overlap check and the
// insert so two overlapping attempts cannot both observe a vacant interval.
func (s *MemoryStore) CreateIfVacant(ctx context.Context, booking *models.Booking) error {
	lock := s.propertyLock(booking.PropertyID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.props[booking.PropertyID]; !ok {
		return ErrNotFound
	}

	overlapping := s.overlappingLocked(booking.PropertyID, booking.StartDate, booking.EndDate)
	var blocks []models.PropertyBlock
	for _, blk := range s.blocks[booking.PropertyID] {
		if calendar.Overlaps(blk.StartDate, blk.EndDate, booking.StartDate, booking.EndDate) {
			blocks = append(blocks, blk)
		}
	}
	if dates := conflictDates(booking.StartDate, booking.EndDate, overlapping, blocks); len(dates) > 0 {
		return &ConflictError{Dates: dates}
	}

	booking.ID = s.allocID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *MemoryStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[booking.ID]; !ok {
		return ErrNotFound
	}
	booking.UpdatedAt = time.Now()
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *MemoryStore) ExpirePending(ctx context.Context, now time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []models.Booking
	for id, b := range s.bookings {
		if b.Status == models.StatusPending && b.ExpiresAt.Before(now) {
			b.Status = models.StatusCancelled
			b.UpdatedAt = time.Now()
			s.bookings[id] = b
			expired = append(expired, b)
		}
	}
	return expired, nil
}

func (s *MemoryStore) CreateBlock(ctx context.Context, block *models.PropertyBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.props[block.PropertyID]; !ok {
		return ErrNotFound
	}
	block.ID = s.allocID()
	block.CreatedAt = time.Now()
	s.blocks[block.PropertyID] = append(s.blocks[block.PropertyID], *block)
	return nil
}

func (s *MemoryStore) BlocksByProperty(ctx context.Context, propertyID uint) ([]models.PropertyBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PropertyBlock, len(s.blocks[propertyID]))
	copy(out, s.blocks[propertyID])
	return out, nil
}

func (s *MemoryStore) BlocksOverlapping(ctx context.Context, propertyID uint, start, end time.Time) ([]models.PropertyBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PropertyBlock
	for _, blk := range s.blocks[propertyID] {
		if calendar.Overlaps(blk.StartDate, blk.EndDate, start, end) {
			out = append(out, blk)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveDayPrice(ctx context.Context, price *models.DayPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	price.ID = s.allocID()
	s.prices[price.PropertyID] = append(s.prices[price.PropertyID], *price)
	return nil
}

func (s *MemoryStore) DayPricesIn(ctx context.Context, propertyID uint, start, end time.Time) ([]models.DayPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DayPrice
	for _, p := range s.prices[propertyID] {
		d := calendar.DayOf(p.Date)
		if !d.Before(calendar.DayOf(start)) && d.Before(calendar.DayOf(end)) {
			out = append(out, p)
		}
	}
	return out, nil
}
