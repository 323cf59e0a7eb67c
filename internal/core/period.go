package core

import (
	"fmt"
	"time"
)

// MonthKey returns the canonical YYYY-MM key for a timestamp, evaluated
// in the given location. Month-relative queries are keyed on this value.
func MonthKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01")
}

// DayKey returns the canonical YYYY-MM-DD key for a timestamp in the
// given location. Grouping in local time avoids off-by-one day buckets
// around midnight.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}

// ParseMonthKey parses a YYYY-MM key into its year and month parts.
func ParseMonthKey(key string) (year int, month time.Month, err error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month key %q: %w", key, err)
	}
	return t.Year(), t.Month(), nil
}

// MonthStart returns midnight on the first day of the keyed month in loc.
func MonthStart(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, loc), nil
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var monthNames = map[string][12]string{
	"en": {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	"uk": {
		"Січень", "Лютий", "Березень", "Квітень", "Травень", "Червень",
		"Липень", "Серпень", "Вересень", "Жовтень", "Листопад", "Грудень",
	},
}

// MonthLabel renders a YYYY-MM key as a localized "Month YYYY" label.
// Unknown languages fall back to English; a malformed key is returned
// verbatim so a display layer never sees an error for a label.
func MonthLabel(key, lang string) string {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	names, ok := monthNames[lang]
	if !ok {
		names = monthNames["en"]
	}
	return fmt.Sprintf("%s %d", names[int(month)-1], year)
}
