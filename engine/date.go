package engine

import "time"

// =============================================================================
// DATE POINT - Day-granularity date (schedules are day-level, always UTC)
// =============================================================================

type DatePoint struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) DatePoint {
	return DatePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) DatePoint {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() DatePoint {
	return DateOf(time.Now().UTC())
}

func ParseDate(s string) (DatePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DatePoint{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d DatePoint) Before(o DatePoint) bool        { return d.normalize().Before(o.normalize()) }
func (d DatePoint) After(o DatePoint) bool         { return d.normalize().After(o.normalize()) }
func (d DatePoint) Equal(o DatePoint) bool         { return d.normalize().Equal(o.normalize()) }
func (d DatePoint) BeforeOrEqual(o DatePoint) bool { return d.Before(o) || d.Equal(o) }
func (d DatePoint) AfterOrEqual(o DatePoint) bool  { return d.After(o) || d.Equal(o) }

func (d DatePoint) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d DatePoint) AddDays(n int) DatePoint   { return DatePoint{Time: d.Time.AddDate(0, 0, n)} }
func (d DatePoint) AddMonths(n int) DatePoint { return DatePoint{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d DatePoint) Year() int         { return d.Time.Year() }
func (d DatePoint) Month() time.Month { return d.Time.Month() }
func (d DatePoint) Day() int          { return d.Time.Day() }
func (d DatePoint) IsZero() bool      { return d.Time.IsZero() }

func (d DatePoint) String() string { return d.normalize().Format("2006-01-02") }

// DaysBetween returns the number of whole days from one date to another.
// Negative when to is before from.
func DaysBetween(from, to DatePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
