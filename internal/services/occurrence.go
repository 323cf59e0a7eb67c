// This file implements the Strategy Pattern for recurring occurrence
// stepping. Each frequency type (daily, weekly, monthly, yearly) has
// its own stepper that encapsulates how the series advances from its
// start date, including month-end and leap-day clamping.

package services

import (
	"fmt"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
)

// OccurrenceStepper is the strategy interface for one frequency type.
// Occurrences are date-only values at midnight UTC.
type OccurrenceStepper interface {
	// OccurrenceAt returns the n-th occurrence (0-based) of a series
	// starting at start.
	OccurrenceAt(start time.Time, n int) time.Time
	// FirstOnOrAfter returns the smallest n whose occurrence falls on
	// or after asOf. Never negative.
	FirstOnOrAfter(start, asOf time.Time) int
}

// dateOnly strips the clock and normalizes to midnight UTC so day
// arithmetic is exact regardless of the input's zone or DST.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// DailyStepper advances one day per occurrence.
type DailyStepper struct{}

func (DailyStepper) OccurrenceAt(start time.Time, n int) time.Time {
	return dateOnly(start).AddDate(0, 0, n)
}

func (DailyStepper) FirstOnOrAfter(start, asOf time.Time) int {
	d := daysBetween(start, asOf)
	if d < 0 {
		return 0
	}
	return d
}

// WeeklyStepper advances seven days per occurrence.
type WeeklyStepper struct{}

func (WeeklyStepper) OccurrenceAt(start time.Time, n int) time.Time {
	return dateOnly(start).AddDate(0, 0, 7*n)
}

func (WeeklyStepper) FirstOnOrAfter(start, asOf time.Time) int {
	d := daysBetween(start, asOf)
	if d <= 0 {
		return 0
	}
	return (d + 6) / 7
}

// MonthlyStepper advances one month per occurrence, keeping the start's
// day-of-month. When the target month is shorter the occurrence clamps
// to its last day: a series starting Jan 31 runs Jan 31, Feb 28 (or 29),
// Mar 31, never Mar 1. Clamping is per occurrence, not cumulative.
type MonthlyStepper struct{}

func (MonthlyStepper) OccurrenceAt(start time.Time, n int) time.Time {
	s := dateOnly(start)
	anchor := time.Date(s.Year(), s.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := s.Day()
	if last := core.LastDayOfMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
}

func (m MonthlyStepper) FirstOnOrAfter(start, asOf time.Time) int {
	s, a := dateOnly(start), dateOnly(asOf)
	n := (a.Year()-s.Year())*12 + int(a.Month()) - int(s.Month()) - 1
	if n < 0 {
		n = 0
	}
	for m.OccurrenceAt(start, n).Before(a) {
		n++
	}
	return n
}

// YearlyStepper advances one year per occurrence, clamping Feb 29 to
// Feb 28 on non-leap years.
type YearlyStepper struct{}

func (YearlyStepper) OccurrenceAt(start time.Time, n int) time.Time {
	s := dateOnly(start)
	year := s.Year() + n
	day := s.Day()
	if last := core.LastDayOfMonth(year, s.Month()); day > last {
		day = last
	}
	return time.Date(year, s.Month(), day, 0, 0, 0, 0, time.UTC)
}

func (y YearlyStepper) FirstOnOrAfter(start, asOf time.Time) int {
	s, a := dateOnly(start), dateOnly(asOf)
	n := a.Year() - s.Year() - 1
	if n < 0 {
		n = 0
	}
	for y.OccurrenceAt(start, n).Before(a) {
		n++
	}
	return n
}

var occurrenceStrategies = map[core.Frequency]OccurrenceStepper{
	core.Daily:   DailyStepper{},
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// GetOccurrenceStepper returns the stepper for a frequency.
func GetOccurrenceStepper(f core.Frequency) (OccurrenceStepper, error) {
	stepper, ok := occurrenceStrategies[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return stepper, nil
}
