package model

import (
	"fmt"
	"time"
)

// Day is a calendar day with no time-of-day or zone component.
// The zero value is the zero day and reports IsZero.
type Day struct {
	t time.Time
}

// NewDay creates a Day from a year, month and day-of-month.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a time to its calendar day.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// Today returns the current calendar day.
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses an ISO YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayOf(t), nil
}

// IsZero reports whether d is the zero day.
func (d Day) IsZero() bool { return d.t.IsZero() }

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the number of days from d to other (negative when
// other is earlier).
func (d Day) DaysUntil(other Day) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }

// After reports whether d is later than other.
func (d Day) After(other Day) bool { return d.t.After(other.t) }

// Equal reports whether d and other are the same calendar day.
func (d Day) Equal(other Day) bool { return d.t.Equal(other.t) }

// StartOfMonth returns the first day of d's month.
func (d Day) StartOfMonth() Day {
	return NewDay(d.t.Year(), d.t.Month(), 1)
}

// EndOfMonth returns the last day of d's month.
func (d Day) EndOfMonth() Day {
	return NewDay(d.t.Year(), d.t.Month()+1, 0)
}

// DaysInMonth returns the number of days in d's month.
func (d Day) DaysInMonth() int {
	return d.EndOfMonth().t.Day()
}

// Month returns the month of d.
func (d Day) Month() time.Month { return d.t.Month() }

// Year returns the year of d.
func (d Day) Year() int { return d.t.Year() }

// Time returns d as a time.Time at midnight UTC.
func (d Day) Time() time.Time { return d.t }

// String formats d as ISO YYYY-MM-DD.
func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}
