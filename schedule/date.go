package schedule

import (
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granularity point in time (due dates, anchors, completions)
// =============================================================================

// Date is a calendar day in UTC. All due-date arithmetic in the engine
// operates on Dates; wall-clock time never leaks into scheduling decisions.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.normalize().AddDate(0, 0, n)} }

// AddMonthsClipped adds n calendar months, clipping the day-of-month to the
// last valid day of the target month. time.AddDate normalizes instead
// (Jan 31 + 1 month = Mar 2/3), which is exactly the drift this avoids.
func (d Date) AddMonthsClipped(n int) Date {
	year := d.Year()
	month := int(d.Month()) + n
	// Normalize month into [1, 12], carrying into the year.
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	if month <= 0 {
		month += 12
		year--
	}
	day := d.Day()
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return NewDate(year, time.Month(month), day)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// JSON: dates travel as "2006-01-02" strings; zero dates as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysUntil returns the whole days from d to other (negative if other is earlier).
func DaysUntil(d, other Date) int {
	return int(other.normalize().Sub(d.normalize()).Hours() / 24)
}

// =============================================================================
// CLOCK - Explicit time source so every entry point is deterministic in tests
// =============================================================================

// Clock supplies "today" to the engine. Production uses SystemClock; tests
// pin a FixedClock so horizon and overdue decisions are reproducible.
type Clock interface {
	Today() Date
}

type SystemClock struct{}

func (SystemClock) Today() Date { return DateOf(time.Now()) }

// FixedClock always reports the same day.
type FixedClock struct {
	Day Date
}

func (c FixedClock) Today() Date { return c.Day }
