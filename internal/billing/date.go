package billing

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day. Time of day and zone never take part in billing decisions.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date without validating it
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the day
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// After reports whether d is a strictly later day than o
func (d Date) After(o Date) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	if d.Month != o.Month {
		return d.Month > o.Month
	}
	return d.Day > o.Day
}

// AddDays shifts the date by n days
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DayFirst formats the date as D/M/YYYY without zero padding, the way reminders show it
func (d Date) DayFirst() string {
	return fmt.Sprintf("%d/%d/%d", d.Day, int(d.Month), d.Year)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, ok := ParseDate(string(text))
	if !ok {
		return fmt.Errorf("invalid date %q", string(text))
	}
	*d = parsed
	return nil
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate normalizes a stored date string. Two shapes are accepted and told apart
// purely by their separator: "YYYY-MM-DD" (an ISO time suffix is ignored) and
// "DD/MM/YYYY". Empty values, "N/A", other shapes and impossible calendar days
// return ok=false.
func ParseDate(raw string) (Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "N/A") {
		return Date{}, false
	}

	switch {
	case strings.Contains(s, "-"):
		if i := strings.IndexByte(s, 'T'); i >= 0 {
			s = s[:i]
		}
		parts := strings.Split(s, "-")
		if len(parts) != 3 {
			return Date{}, false
		}
		return fromParts(parts[0], parts[1], parts[2])
	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return Date{}, false
		}
		return fromParts(parts[2], parts[1], parts[0])
	}
	return Date{}, false
}

func fromParts(year, month, day string) (Date, bool) {
	if len(year) != 4 || len(month) > 2 || len(day) > 2 {
		return Date{}, false
	}
	y, ok := digits(year)
	if !ok {
		return Date{}, false
	}
	m, ok := digits(month)
	if !ok {
		return Date{}, false
	}
	d, ok := digits(day)
	if !ok {
		return Date{}, false
	}

	if y < 1 || m < 1 || m > 12 || d < 1 || d > DaysInMonth(y, time.Month(m)) {
		return Date{}, false
	}
	return Date{Year: y, Month: time.Month(m), Day: d}, true
}

func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
