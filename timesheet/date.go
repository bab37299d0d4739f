package timesheet

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day with no time component
// =============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar day. The zero value is "no date".
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate accepts YYYY-MM-DD only.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ParseError{Kind: ErrInvalidDate, Input: s}
	}
	return Date{Time: t}, nil
}

// MustParseDate is for tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }
func (d Date) String() string        { return d.Time.Format(dateLayout) }

// WeekStart returns the Monday of the week containing d.
func (d Date) WeekStart() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// DaysInclusive returns every day from d through to. Empty when to is before d.
func (d Date) DaysInclusive(to Date) []Date {
	var days []Date
	for cur := d; !cur.After(to); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	return Date{Time: StartOfMonth(year, month).Time.AddDate(0, 1, -1)}
}

// =============================================================================
// TIME OF DAY - Wall clock reading, seconds since midnight
// =============================================================================

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 24 * secondsPerHour
)

// TimeOfDay is a clock reading within one day. Optional clock fields use *TimeOfDay.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*secondsPerHour + minute*secondsPerMinute)
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, &ParseError{Kind: ErrInvalidTime, Input: s}
	}
	limits := []int{23, 59, 59}
	var fields [3]int
	for i, p := range parts {
		if !allDigits(p) {
			return 0, &ParseError{Kind: ErrInvalidTime, Input: s}
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, &ParseError{Kind: ErrInvalidTime, Input: s}
		}
		fields[i] = n
	}
	return TimeOfDay(fields[0]*secondsPerHour + fields[1]*secondsPerMinute + fields[2]), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseOptionalTime treats a blank string as "absent".
func ParseOptionalTime(s string) (*TimeOfDay, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// At is shorthand for an optional clock reading.
func At(hour, minute int) *TimeOfDay {
	t := NewTimeOfDay(hour, minute)
	return &t
}

func (t TimeOfDay) Hour() int    { return int(t) / secondsPerHour }
func (t TimeOfDay) Minute() int  { return int(t) % secondsPerHour / secondsPerMinute }
func (t TimeOfDay) Second() int  { return int(t) % secondsPerMinute }
func (t TimeOfDay) Seconds() int { return int(t) }

func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return pad2(t.Hour()) + ":" + pad2(t.Minute()) + ":" + pad2(t.Second())
	}
	return pad2(t.Hour()) + ":" + pad2(t.Minute())
}

// FormatOptional renders an absent time as "".
func FormatOptional(t *TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// span returns the seconds from start to end, treating end <= start as the next day.
func span(start, end TimeOfDay) (from, to int) {
	from, to = int(start), int(end)
	if to <= from {
		to += secondsPerDay
	}
	return from, to
}
