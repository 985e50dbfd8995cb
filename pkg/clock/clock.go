package clock

import "time"

// Clock supplies the current instant and the current calendar day.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystem returns a clock backed by time.Now. The calendar day is taken in
// loc and returned as midnight UTC of that date.
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (c systemClock) Today() time.Time {
	return StartOfDay(time.Now().In(c.loc))
}

// Fixed is a clock frozen at a single instant.
type Fixed struct {
	At time.Time
}

func NewFixed(at time.Time) *Fixed {
	return &Fixed{At: at}
}

func (f *Fixed) Now() time.Time {
	return f.At.UTC()
}

func (f *Fixed) Today() time.Time {
	return StartOfDay(f.At)
}

// StartOfDay keeps the calendar date of t as written and drops the time of day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from -> to, truncated toward zero.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
