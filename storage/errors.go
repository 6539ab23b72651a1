package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"rental-scheduling-server/calendar"

	"rental-scheduling-server/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ConflictError is returned by CreateIfVacant when the candidate interval
// overlaps an occupying booking or a manual block. Dates lists every
// conflicting day so the caller can redraw its calendar.
type ConflictError struct {
	Dates []time.Time
}

func (e *ConflictError) Error() string {
	days := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		days[i] = calendar.FormatDate(d)
	}
	return fmt.Sprintf("dates not available: %s", strings.Join(days, ", "))
}

// conflictDates returns the sorted days in [start, end) covered by any of
// the given occupying bookings or blocks.
func conflictDates(start, end time.Time, bookings []models.Booking, blocks []models.PropertyBlock) []time.Time {
	taken := make(map[time.Time]bool)
	mark := func(bStart, bEnd time.Time) {
		calendar.EachDay(bStart, bEnd, func(day time.Time) {
			if !day.Before(calendar.DayOf(start)) && day.Before(calendar.DayOf(end)) {
				taken[day] = true
			}
		})
	}
	for _, b := range bookings {
		if b.Occupies() {
			mark(b.StartDate, b.EndDate)
		}
	}
	for _, blk := range blocks {
		mark(blk.StartDate, blk.EndDate)
	}

	days := make([]time.Time, 0, len(taken))
	for d := range taken {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
