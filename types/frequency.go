package types

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidFrequency = errors.New("invalid frequency")

// Frequency describes how the simulation steps through the calendar: every
// business day, every calendar day, or a fixed duration such as "168h".
type Frequency string

const (
	BusinessDay Frequency = "B"
	CalendarDay Frequency = "D"
)

// Every returns a fixed-duration frequency.
func Every(d time.Duration) Frequency {
	return Frequency(d.String())
}

// ParseFrequency accepts "B", "D" or anything time.ParseDuration understands.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

func (f Frequency) Validate() error {
	switch f {
	case BusinessDay, CalendarDay:
		return nil
	}
	d, err := time.ParseDuration(string(f))
	if err != nil {
		return fmt.Errorf("%w %q", ErrInvalidFrequency, string(f))
	}
	if d <= 0 {
		return fmt.Errorf("%w %q: duration must be positive", ErrInvalidFrequency, string(f))
	}
	return nil
}

// Range returns every step date from start to end, end included when it
// falls on the grid.
func (f Frequency) Range(start, end time.Time) ([]time.Time, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var dates []time.Time
	switch f {
	case BusinessDay:
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if IsBusinessDay(d) {
				dates = append(dates, d)
			}
		}
	case CalendarDay:
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
	default:
		step, _ := time.ParseDuration(string(f))
		for d := start; !d.After(end); d = d.Add(step) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

func (f Frequency) String() string {
	switch f {
	case BusinessDay:
		return "business day"
	case CalendarDay:
		return "calendar day"
	}
	return "every " + string(f)
}

// IsBusinessDay reports whether t falls on a weekday. Holidays are not
// taken into account.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
