// Package businessday is the single source of "now" and "today" for attendance.
// Dates are site-local calendar days, represented as midnight UTC so they round-trip
// through a postgres date column unchanged.
package businessday

import (
	"time"

	"github.com/juju/clock"
)

const DateLayout = "2006-01-02"

// Default checkout offered to an operator closing an abandoned session: 20:00 the day before.
const defaultCheckoutHour = 20

type Calendar struct {
	clock clock.Clock
	loc   *time.Location
}

func New(clk clock.Clock, loc *time.Location) *Calendar {
	if clk == nil {
		clk = clock.WallClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{clock: clk, loc: loc}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) Now() time.Time {
	return c.clock.Now().UTC()
}

func (c *Calendar) Today() time.Time {
	return c.DateOf(c.clock.Now())
}

// DateOf returns the site-local calendar day that t falls on.
func (c *Calendar) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Calendar) IsToday(date time.Time) bool {
	return SameDay(date, c.Today())
}

func (c *Calendar) DefaultCorrectedCheckout() time.Time {
	local := c.clock.Now().In(c.loc)
	prev := local.AddDate(0, 0, -1)
	return time.Date(prev.Year(), prev.Month(), prev.Day(), defaultCheckoutHour, 0, 0, 0, c.loc).UTC()
}

func SameDay(a, b time.Time) bool {
	return Format(a) == Format(b)
}

// Format prints a date value as stored; no timezone conversion is applied.
func Format(date time.Time) string {
	return date.UTC().Format(DateLayout)
}
