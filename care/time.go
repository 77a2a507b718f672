package care

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day, the only time granularity a care day has
// =============================================================================

// DateLayout is the on-disk and wire format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day. The zero value means "no date".
type Date struct {
	Time time.Time
}

// NewDate returns the given day at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day and location of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today is the current calendar day in the local time zone.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.normalize().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.normalize().AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Within reports whether d lies in the closed interval [from, to].
func (d Date) Within(from, to Date) bool {
	return from.BeforeOrEqual(d) && d.BeforeOrEqual(to)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetween is the number of calendar days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// DaysInRange lists every calendar day of [from, to], both ends included.
// It returns nil when to is before from.
func DaysInRange(from, to Date) []Date {
	if to.Before(from) {
		return nil
	}
	days := make([]Date, 0, DaysBetween(from, to)+1)
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date {
	return DateOf(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

// AgeOn is the age in whole years of someone born on birth, as of day.
// The year is only counted once the birthday has been reached.
func AgeOn(birth, day Date) int {
	if birth.IsZero() || day.Before(birth) {
		return 0
	}
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	return age
}

// frenchMonths names months the way the confirmation messages print them.
var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// LongFrench formats d as "01 juillet 2025".
func (d Date) LongFrench() string {
	return fmt.Sprintf("%02d %s %d", d.Day(), frenchMonths[d.Month()-1], d.Year())
}
