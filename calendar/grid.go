package calendar

import (
	"fmt"
	"time"

	"rental-scheduling-server/models"
)

// GridRows and GridCols fix the display grid shape: six weeks of seven days
// covers every possible month/weekday alignment.
const (
	GridRows = 6
	GridCols = 7
)

// Grid is a month laid out for display, Sunday-first. Cells outside the
// target month are nil; in-month cells point at their day record.
type Grid [GridRows][GridCols]*models.DayRecord

// MonthGrid aligns the given records to the weekday of the first of the
// month and returns the fixed 6x7 grid. Records outside the target month are
// ignored; missing in-month records leave a cell with a zero-price record so
// the grid never has gaps.
func MonthGrid(month time.Month, year int, records []models.DayRecord) (Grid, error) {
	var grid Grid
	if month < time.January || month > time.December {
		return grid, fmt.Errorf("invalid month %d", month)
	}

	first, next := MonthSpan(month, year)
	daysInMonth := DaysBetween(first, next)

	byDay := make(map[int]models.DayRecord, len(records))
	for _, r := range records {
		d := DayOf(r.Date)
		if d.Month() == month && d.Year() == year {
			byDay[d.Day()] = r
		}
	}

	offset := int(first.Weekday()) // Sunday = 0
	for day := 1; day <= daysInMonth; day++ {
		rec, ok := byDay[day]
		if !ok {
			rec = models.DayRecord{Date: first.AddDate(0, 0, day-1)}
		}
		cell := offset + day - 1
		r := rec
		grid[cell/GridCols][cell%GridCols] = &r
	}
	return grid, nil
}
