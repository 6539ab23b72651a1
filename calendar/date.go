package calendar

import "time"

// ISODate is the wire format for calendar dates. There is no time-of-day
// component anywhere in this package; every value is normalized to midnight
// UTC so that comparing two dates can never be thrown off by a time zone.
const ISODate = "2006-01-02"

// DayOf strips the time-of-day component, returning the civil date at
// midnight UTC.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b. Negative when
// b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DayOf(b).Sub(DayOf(a)) / (24 * time.Hour))
}

// MonthSpan returns the half-open interval [first of month, first of next
// month) for the given month and year.
func MonthSpan(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ParseDate parses a "2006-01-02" string into a normalized civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}

// FormatDate renders a date in the "2006-01-02" wire format.
func FormatDate(t time.Time) string {
	return t.Format(ISODate)
}

// EachDay calls fn for every day in the half-open interval [start, end).
func EachDay(start, end time.Time, fn func(day time.Time)) {
	for d := DayOf(start); d.Before(DayOf(end)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return DayOf(aStart).Before(DayOf(bEnd)) && DayOf(bStart).Before(DayOf(aEnd))
}
