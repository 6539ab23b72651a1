package calendar

import (
	"sort"
	"time"

	"rental-scheduling-server/models"
)

// Mode says what kind of stay the user is building.
type Mode string

const (
	// ModeRange selects a contiguous half-open interval [start, end).
	ModeRange Mode = "range"
	// ModeIndividual selects discrete dates one by one.
	ModeIndividual Mode = "individual"
)

// EventKind tags the outcome of a selection operation.
type EventKind string

const (
	EventAnchored      EventKind = "anchored"
	EventRangeSelected EventKind = "range-selected"
	EventDatesChanged  EventKind = "dates-changed"
	EventCleared       EventKind = "cleared"
)

// Event is emitted after every successful selection change.
type Event struct {
	Kind   EventKind
	Nights int
	Dates  []time.Time // full sorted set, individual mode only
}

// Availability is the snapshot the state machine consults before accepting a
// click, keyed by "2006-01-02". A date absent from the snapshot is treated
// as unavailable.
type Availability map[string]models.DayRecord

// Selectable reports whether a date can take part in a selection.
func (a Availability) Selectable(d time.Time) bool {
	rec, ok := a[FormatDate(DayOf(d))]
	return ok && rec.Available && !rec.Booked && !rec.Blocked
}

// Selection is the ephemeral per-view selection state. It is a plain value:
// operations return the next state instead of mutating shared fields, so
// each calendar view owns exactly the state it holds. A zero Start/End means
// "not chosen yet".
type Selection struct {
	Mode  Mode
	Start time.Time
	End   time.Time
	Dates []time.Time // sorted ascending, no duplicates
	Hover time.Time
}

// NewSelection returns the empty state for a freshly opened calendar view.
// Callers re-create the state whenever the viewed property changes.
func NewSelection(mode Mode) Selection {
	return Selection{Mode: mode}
}

// Click feeds one date tap into the state machine. Clicks on unavailable,
// booked or blocked dates are no-ops in every state; a no-op returns the
// state unchanged and a nil event.
func (s Selection) Click(d time.Time, avail Availability) (Selection, *Event) {
	if !avail.Selectable(d) {
		return s, nil
	}
	d = DayOf(d)
	if s.Mode == ModeIndividual {
		return s.toggleDate(d)
	}
	return s.clickRange(d)
}

func (s Selection) clickRange(d time.Time) (Selection, *Event) {
	switch {
	case s.Start.IsZero():
		// Empty -> Anchored.
		s.Start = d
		return s, &Event{Kind: EventAnchored}
	case s.End.IsZero():
		if d.After(s.Start) {
			// Anchored -> Committed.
			s.End = d
			s.Hover = time.Time{}
			return s, &Event{Kind: EventRangeSelected, Nights: s.Nights()}
		}
		// Clicking at or before the anchor restarts the selection.
		s.Start = d
		return s, &Event{Kind: EventAnchored}
	default:
		// Committed: any click starts over from the clicked date.
		s.Start = d
		s.End = time.Time{}
		s.Hover = time.Time{}
		return s, &Event{Kind: EventAnchored}
	}
}

func (s Selection) toggleDate(d time.Time) (Selection, *Event) {
	for i, sd := range s.Dates {
		if sd.Equal(d) {
			// Removing an already-selected date is always permitted.
			next := make([]time.Time, 0, len(s.Dates)-1)
			next = append(next, s.Dates[:i]...)
			next = append(next, s.Dates[i+1:]...)
			s.Dates = next
			return s, &Event{Kind: EventDatesChanged, Nights: len(s.Dates), Dates: s.SelectedDates()}
		}
	}
	if !s.gapAllows(d) {
		return s, nil
	}
	next := make([]time.Time, 0, len(s.Dates)+1)
	next = append(next, s.Dates...)
	next = append(next, d)
	sort.Slice(next, func(i, j int) bool { return next[i].Before(next[j]) })
	s.Dates = next
	return s, &Event{Kind: EventDatesChanged, Nights: len(s.Dates), Dates: s.SelectedDates()}
}

// gapAllows enforces the individual-mode gap rule: adding d is rejected iff
// some selected date s sits exactly 2 or 3 days away from d while at least
// one day strictly between them is still unselected. Contiguous runs (gap 0)
// and longer gaps (a second, disjoint stay) remain legal.
func (s Selection) gapAllows(d time.Time) bool {
	if len(s.Dates) == 0 {
		return true
	}
	for _, sd := range s.Dates {
		dist := DaysBetween(sd, d)
		if dist < 0 {
			dist = -dist
		}
		if dist != 2 && dist != 3 {
			continue
		}
		if s.hasUnselectedBetween(sd, d) {
			return false
		}
	}
	return true
}

func (s Selection) hasUnselectedBetween(a, b time.Time) bool {
	if b.Before(a) {
		a, b = b, a
	}
	for d := a.AddDate(0, 0, 1); d.Before(b); d = d.AddDate(0, 0, 1) {
		if !s.contains(d) {
			return true
		}
	}
	return false
}

func (s Selection) contains(d time.Time) bool {
	for _, sd := range s.Dates {
		if sd.Equal(d) {
			return true
		}
	}
	return false
}

// Clear resets to the empty state. Clearing an already-empty selection is a
// well-defined no-op that still reports the cleared event.
func (s Selection) Clear() (Selection, *Event) {
	return NewSelection(s.Mode), &Event{Kind: EventCleared}
}

// WithHover records a hover preview date. Hovering never mutates committed
// state; it only affects Preview.
func (s Selection) WithHover(d time.Time) Selection {
	s.Hover = DayOf(d)
	return s
}

// Preview returns the dates strictly between the anchor and the hover date
// while a range selection is anchored but not committed. Empty otherwise.
func (s Selection) Preview() []time.Time {
	if s.Mode != ModeRange || s.Start.IsZero() || !s.End.IsZero() || s.Hover.IsZero() {
		return nil
	}
	a, b := s.Start, s.Hover
	if b.Before(a) {
		a, b = b, a
	}
	var days []time.Time
	for d := a.AddDate(0, 0, 1); d.Before(b); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Committed reports whether the selection describes a bookable stay.
func (s Selection) Committed() bool {
	if s.Mode == ModeIndividual {
		return len(s.Dates) > 0
	}
	return !s.Start.IsZero() && !s.End.IsZero()
}

// Nights is the rental-day count of the current selection: the length of the
// half-open interval in range mode, the number of selected dates otherwise.
func (s Selection) Nights() int {
	if s.Mode == ModeIndividual {
		return len(s.Dates)
	}
	if s.Start.IsZero() || s.End.IsZero() {
		return 0
	}
	return DaysBetween(s.Start, s.End)
}

// SelectedDates returns a copy of the sorted individual-mode set.
func (s Selection) SelectedDates() []time.Time {
	out := make([]time.Time, len(s.Dates))
	copy(out, s.Dates)
	return out
}
