// Package availability implements the blocked-date engine: the day-level
// availability map for a rental property, its run-length compressed view,
// and the pointer-drag selection state machine that edits it.
package availability

import (
	"fmt"
	"time"
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

// Day is a calendar date at day granularity. It has no time component and
// no timezone; two Days are equal iff they name the same civil date.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// DayOf truncates t to its civil date.
func DayOf(t time.Time) Day {
	return Day{Year: t.Year(), Month: t.Month(), Date: t.Day()}
}

// ParseDay parses a "2006-01-02" date string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parsing day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Time returns the day at midnight UTC.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// Next returns the following day.
func (d Day) Next() Day {
	return d.AddDays(1)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Date < other.Date
}

// After reports whether d is later than other.
func (d Day) After(other Day) bool {
	return other.Before(d)
}

func (d Day) String() string {
	return d.Time().Format(DayLayout)
}

// MarshalJSON encodes the day as a "2006-01-02" string.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "2006-01-02" string.
func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid day value: %s", s)
	}
	day, err := ParseDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = day
	return nil
}

// MinDay returns the earlier of a and b.
func MinDay(a, b Day) Day {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDay returns the later of a and b.
func MaxDay(a, b Day) Day {
	if a.Before(b) {
		return b
	}
	return a
}

// DaysBetween returns every day from start to end inclusive. An inverted
// range yields nil.
func DaysBetween(start, end Day) []Day {
	if end.Before(start) {
		return nil
	}
	var days []Day
	for d := start; !d.After(end); d = d.Next() {
		days = append(days, d)
	}
	return days
}
