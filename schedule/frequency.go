/*
frequency.go - Pure date arithmetic for recurrence frequencies

PURPOSE:
  Translates a frequency code plus an anchor date into concrete due dates.
  This is the ONLY place in the system that performs recurrence arithmetic;
  every component that needs "when is this next due" goes through here.

FREQUENCY CODES:
  W   weekly         +7 days
  M   monthly        +1 calendar month
  Q   quarterly      +3 calendar months
  SA  semi-annually  +6 calendar months
  A   annually       +12 calendar months
  2y  every 2 years  +24 calendar months
  3y  every 3 years  +36 calendar months
  5y  every 5 years  +60 calendar months

CALENDAR MONTHS, NOT DAY COUNTS:
  Month-based frequencies add calendar months so a monthly inspection
  anchored on the 15th stays on the 15th, instead of drifting across
  months of different length. Day-of-month is clipped to the target
  month's last valid day (Jan 31 -> Feb 28/29).

NO-DRIFT GUARANTEE:
  Multi-period jumps are computed from the original anchor (Advance), never
  by iterating already-clipped dates. DueDatesWithin uses Advance for every
  occurrence, so a month-end anchor produces month-end occurrences forever.

ANCHOR IS REQUIRED:
  A zero anchor is a caller bug, not a case to paper over with "today".
  The one place that deliberately substitutes today for a missing anchor
  is the bulk updater, and it does so explicitly.

SEE ALSO:
  - date.go: Date type and clipped month arithmetic
  - generator.go: Uses DueDatesWithin to materialize records
*/
package schedule

// =============================================================================
// FREQUENCY - Closed recurrence code set
// =============================================================================

type Frequency string

const (
	FreqWeekly     Frequency = "W"
	FreqMonthly    Frequency = "M"
	FreqQuarterly  Frequency = "Q"
	FreqSemiAnnual Frequency = "SA"
	FreqAnnual     Frequency = "A"
	FreqTwoYear    Frequency = "2y"
	FreqThreeYear  Frequency = "3y"
	FreqFiveYear   Frequency = "5y"
)

// monthsPerPeriod maps month-based frequencies to their period length.
// Weekly is absent: it advances by days, not months.
var monthsPerPeriod = map[Frequency]int{
	FreqMonthly:    1,
	FreqQuarterly:  3,
	FreqSemiAnnual: 6,
	FreqAnnual:     12,
	FreqTwoYear:    24,
	FreqThreeYear:  36,
	FreqFiveYear:   60,
}

var frequencyDisplay = map[Frequency]string{
	FreqWeekly:     "Weekly",
	FreqMonthly:    "Monthly",
	FreqQuarterly:  "Quarterly",
	FreqSemiAnnual: "Semi-Annually",
	FreqAnnual:     "Annually",
	FreqTwoYear:    "Every 2 Years",
	FreqThreeYear:  "Every 3 Years",
	FreqFiveYear:   "Every 5 Years",
}

// ParseFrequency validates a wire-level frequency code.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", &UnknownFrequencyError{Code: s}
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	if f == FreqWeekly {
		return true
	}
	_, ok := monthsPerPeriod[f]
	return ok
}

// Display returns the human-readable name for UI collaborators.
func (f Frequency) Display() string {
	if name, ok := frequencyDisplay[f]; ok {
		return name
	}
	return string(f)
}

// =============================================================================
// DUE DATE ARITHMETIC
// =============================================================================

// NextDue returns the due date one period after anchor.
func NextDue(anchor Date, f Frequency) (Date, error) {
	return Advance(anchor, f, 1)
}

// Advance returns the due date n periods after anchor. A single n-period
// jump equals composing NextDue n times; callers doing multi-period math
// should prefer Advance so clipping is applied once, from the anchor.
func Advance(anchor Date, f Frequency, n int) (Date, error) {
	if anchor.IsZero() {
		return Date{}, &MissingFieldError{Field: "anchor_date"}
	}
	if f == FreqWeekly {
		return anchor.AddDays(7 * n), nil
	}
	months, ok := monthsPerPeriod[f]
	if !ok {
		return Date{}, &UnknownFrequencyError{Code: string(f)}
	}
	return anchor.AddMonthsClipped(months * n), nil
}

// DueDatesWithin returns every occurrence from anchor (inclusive) through
// until (inclusive), in order. The anchor itself is the first occurrence.
// Finite and restartable; nothing is persisted.
func DueDatesWithin(anchor Date, f Frequency, until Date) ([]Date, error) {
	if anchor.IsZero() {
		return nil, &MissingFieldError{Field: "anchor_date"}
	}
	if !f.Valid() {
		return nil, &UnknownFrequencyError{Code: string(f)}
	}

	var dates []Date
	for n := 0; ; n++ {
		d, err := Advance(anchor, f, n)
		if err != nil {
			return nil, err
		}
		if d.After(until) {
			break
		}
		dates = append(dates, d)
	}
	return dates, nil
}
