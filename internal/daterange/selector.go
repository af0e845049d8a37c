// Package daterange implements the check-in/check-out picker: a two-click
// selection over calendar days that refuses past dates and derives the
// night count used for pricing.
package daterange

import (
	"errors"
	"sync"
	"time"
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

var (
	// ErrPastDate is returned when a range starts before today.
	ErrPastDate = errors.New("date is in the past")
	// ErrEmptyRange is returned when the end is unset or not after the start.
	ErrEmptyRange = errors.New("check-out must be after check-in")
)

// Range is a pair of calendar days normalized to local midnight.  A zero
// End means the selection is still in progress.
type Range struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Complete reports whether both ends are set and End is after Start.
func (r Range) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.End.After(r.Start)
}

// Nights is the whole number of nights between Start and End, or 0 when
// the range is incomplete.
func (r Range) Nights() int {
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}
	return Nights(r.Start, r.End)
}

// Nights counts calendar days from start to end.  Counting dates rather
// than dividing durations keeps the result stable across DST changes.
// Non-positive differences return 0.
func Nights(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	a := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	n := int(b.Sub(a).Hours() / 24)
	if n <= 0 {
		return 0
	}
	return n
}

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDay parses a YYYY-MM-DD string as local midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DayLayout, s, loc)
}

// Validate checks a finished range against today: no past start and at
// least one night.
func Validate(r Range, today time.Time) error {
	if r.Start.IsZero() || r.End.IsZero() || r.Nights() <= 0 {
		return ErrEmptyRange
	}
	if r.Start.Before(Midnight(today, r.Start.Location())) {
		return ErrPastDate
	}
	return nil
}

// Selector holds the in-progress picker state.  Every state change is
// pushed to subscribers as the full Range.
type Selector struct {
	mu        sync.Mutex
	state     Range
	now       func() time.Time
	loc       *time.Location
	listeners []func(Range)
}

// NewSelector returns an empty selector.  now is consulted on every click
// to decide what "today" is; nil means time.Now.
func NewSelector(now func() time.Time, loc *time.Location) *Selector {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Selector{now: now, loc: loc}
}

// Restore seeds the selector with a previously chosen range, for example
// when returning to the product page from checkout.
func (s *Selector) Restore(r Range) {
	s.set(Range{Start: s.day(r.Start), End: s.day(r.End)})
}

// Subscribe registers fn to receive the full range after every change.
func (s *Selector) Subscribe(fn func(Range)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// State returns the current selection.
func (s *Selector) State() Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Click applies one click on a calendar day and reports whether the
// state changed.  Past days are ignored.  Otherwise a click starts a new
// range unless a start is set without an end, in which case a later day
// completes the range and an earlier or equal day restarts it.
func (s *Selector) Click(day time.Time) (Range, bool) {
	d := s.day(day)
	if d.Before(Midnight(s.now(), s.loc)) {
		return s.State(), false
	}

	s.mu.Lock()
	cur := s.state
	next := Range{Start: d}
	if !cur.Start.IsZero() && cur.End.IsZero() && d.After(cur.Start) {
		next = Range{Start: cur.Start, End: d}
	}
	s.state = next
	listeners := append([]func(Range){}, s.listeners...)
	s.mu.Unlock()

	emit(listeners, next)
	return next, true
}

func (s *Selector) set(r Range) {
	s.mu.Lock()
	s.state = r
	listeners := append([]func(Range){}, s.listeners...)
	s.mu.Unlock()
	emit(listeners, r)
}

// emit runs outside the lock so listeners may call back into the selector.
func emit(listeners []func(Range), r Range) {
	for _, fn := range listeners {
		fn(r)
	}
}

func (s *Selector) day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return Midnight(t, s.loc)
}
