// Package clock provides the civil time source for the application.
// All day, week and month windowing uses one fixed time zone so that
// boundaries are stable and auditable regardless of where the process runs.
// This is part of the platform layer and contains no business logic.
package clock

import "time"

// ZoneName is the civil calendar zone used for all lead windowing.
const ZoneName = "America/New_York"

// Clock supplies the current instant. It is injected into every component
// that needs "now" so tests can supply fixed instants.
type Clock interface {
	Now() time.Time
}

// Civil is the production Clock, anchored to the fixed civil zone.
type Civil struct {
	loc *time.Location
}

// NewCivil loads the fixed civil zone and returns a Clock bound to it.
func NewCivil() (*Civil, error) {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		return nil, err
	}
	return &Civil{loc: loc}, nil
}

// Now returns the current instant in the civil zone.
func (c *Civil) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

// Now returns the pinned instant.
func (f Fixed) Now() time.Time {
	return f.Instant
}

// Bounds is a half-open instant range [Start, End).
type Bounds struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (b Bounds) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// DayBounds returns [startOfDay, endOfDay) of the instant in the civil zone.
func DayBounds(t time.Time) Bounds {
	local := t.In(mustZone())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return Bounds{Start: start, End: start.AddDate(0, 0, 1)}
}

// PeriodBounds holds the start of the current day, Monday-based week
// and month, each usable directly in range queries.
type PeriodBounds struct {
	DayStart   time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

// Periods computes the period starts for the instant in the civil zone.
func Periods(t time.Time) PeriodBounds {
	local := t.In(mustZone())
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())

	// Monday-based week: Sunday counts as 6 days into the week.
	offset := int(local.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	weekStart := dayStart.AddDate(0, 0, -offset)

	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, local.Location())

	return PeriodBounds{DayStart: dayStart, WeekStart: weekStart, MonthStart: monthStart}
}

var cachedZone *time.Location

func mustZone() *time.Location {
	if cachedZone != nil {
		return cachedZone
	}
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		// The zone name is a compile-time constant present in the tzdata
		// shipped with the platform; failure here means a broken runtime.
		panic("clock: cannot load zone " + ZoneName + ": " + err.Error())
	}
	cachedZone = loc
	return loc
}
