// Package clock renders timestamps in the business timezone and derives
// the canonical YYYY-MM-DD date keys every other component works with.
// The business timezone is a fixed offset; host-local time is never used.
package clock

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type Clock struct {
	loc *time.Location
}

func New(offsetHours int) *Clock {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return &Clock{loc: time.FixedZone(name, offsetHours*3600)}
}

// Now returns the current instant rendered in business time.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the business-time location.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// In converts t to business time.
func (c *Clock) In(t time.Time) time.Time {
	return t.In(c.loc)
}

// DateKey returns the YYYY-MM-DD date key of t in business time.
func (c *Clock) DateKey(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key into midnight business time.
// Phantom dates such as 2026-02-30 are rejected.
func (c *Clock) ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

// At returns the instant at hhmm ("HH:MM") on the given date key, in
// business time.
func (c *Clock) At(dateKey, hhmm string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" 15:04", dateKey+" "+hhmm, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q on %q: %w", hhmm, dateKey, err)
	}
	return t, nil
}

// AddDays shifts a date key by n calendar days.
func (c *Clock) AddDays(dateKey string, n int) (string, error) {
	t, err := c.ParseDateKey(dateKey)
	if err != nil {
		return "", err
	}
	return c.DateKey(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the inclusive calendar-day span between two keys,
// e.g. DaysBetween("2026-02-05", "2026-02-05") == 1.
func (c *Clock) DaysBetween(from, to string) (int, error) {
	start, err := c.ParseDateKey(from)
	if err != nil {
		return 0, err
	}
	end, err := c.ParseDateKey(to)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// IsWeekend reports whether the date key falls on Saturday or Sunday in
// business time.
func (c *Clock) IsWeekend(dateKey string) (bool, error) {
	t, err := c.ParseDateKey(dateKey)
	if err != nil {
		return false, err
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday, nil
}

// CountWorkdays counts dates in [from, to] that are neither weekend nor
// holiday. isHoliday is consulted with each date key in the range.
func (c *Clock) CountWorkdays(from, to string, isHoliday func(dateKey string) bool) (int, error) {
	start, err := c.ParseDateKey(from)
	if err != nil {
		return 0, err
	}
	end, err := c.ParseDateKey(to)
	if err != nil {
		return 0, err
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if isHoliday != nil && isHoliday(c.DateKey(d)) {
			continue
		}
		count++
	}
	return count, nil
}
